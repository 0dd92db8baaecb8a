// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	classfile "github.com/saferwall/classfile"
	"github.com/spf13/cobra"
)

var (
	wantConstantPool bool
	wantFields       bool
	wantMethods      bool
	wantCode         bool
	wantAll          bool
)

func prettyPrint(v classfile.Tree) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<json error: %v>", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "\t"); err != nil {
		return string(raw)
	}
	return buf.String()
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "classdump",
		Short: "A JVM class file codec",
		Long:  "A bidirectional .class file codec: parses a class file, prints selected sections as indented JSON",
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump [file]",
		Short: "Dumps a class file",
		Long:  "Parses a .class file and prints the requested sections as indented JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			filename := args[0]

			c, err := classfile.Open(filename, &classfile.Options{})
			if err != nil {
				log.Printf("error while parsing %s: %v", filename, err)
				os.Exit(1)
			}

			full := c.ToTree()
			root, ok := full.(map[string]classfile.Tree)
			if !ok {
				log.Printf("unexpected tree shape for %s", filename)
				os.Exit(1)
			}

			if wantAll {
				fmt.Println(prettyPrint(full))
				return
			}

			printed := false
			if wantConstantPool {
				// The constant pool is not retained on the resolved Class
				// (it is a transient artifact recreated on write); the
				// closest equivalent view is this_class/super_class plus
				// every literal string already folded into the tree.
				fmt.Println(prettyPrint(map[string]classfile.Tree{
					"this_class":  root["this_class"],
					"super_class": root["super_class"],
					"interfaces":  root["interfaces"],
				}))
				printed = true
			}
			if wantFields {
				fmt.Println(prettyPrint(root["fields"]))
				printed = true
			}
			if wantMethods {
				fmt.Println(prettyPrint(root["methods"]))
				printed = true
			}
			if wantCode {
				methods, _ := root["methods"].([]classfile.Tree)
				for _, m := range methods {
					method, ok := m.(map[string]classfile.Tree)
					if !ok {
						continue
					}
					attrs, _ := method["attributes"].([]classfile.Tree)
					for _, a := range attrs {
						attr, ok := a.(map[string]classfile.Tree)
						if !ok {
							continue
						}
						if code, ok := attr["Code"]; ok {
							fmt.Println(prettyPrint(map[string]classfile.Tree{
								"method": method["name"],
								"code":   code,
							}))
						}
					}
				}
				printed = true
			}
			if !printed {
				fmt.Println(prettyPrint(map[string]classfile.Tree{
					"this_class":  root["this_class"],
					"super_class": root["super_class"],
					"version":     root["version"],
				}))
			}
		},
	}

	dumpCmd.Flags().BoolVarP(&wantConstantPool, "constant-pool", "", false, "Dump this_class/super_class/interfaces")
	dumpCmd.Flags().BoolVarP(&wantFields, "fields", "", false, "Dump fields")
	dumpCmd.Flags().BoolVarP(&wantMethods, "methods", "", false, "Dump methods")
	dumpCmd.Flags().BoolVarP(&wantCode, "code", "", false, "Dump each method's Code attribute")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "Dump the full resolved tree")

	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
