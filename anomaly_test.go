// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAnomalyDedups(t *testing.T) {
	c := &Class{}
	c.addAnomaly(AnoEmptyConstantPool)
	c.addAnomaly(AnoEmptyConstantPool)
	require.Equal(t, []string{AnoEmptyConstantPool}, c.Anomalies)
}

func TestCollectAnomaliesMissingSuperclass(t *testing.T) {
	c := &Class{ThisClass: "com/example/Widget"}
	c.collectAnomalies(uint16(AccPublic), 2)
	require.Contains(t, c.Anomalies, AnoMissingSuperclass)
}

func TestCollectAnomaliesJavaLangObjectExempt(t *testing.T) {
	c := &Class{ThisClass: "java/lang/Object"}
	c.collectAnomalies(uint16(AccPublic), 2)
	require.NotContains(t, c.Anomalies, AnoMissingSuperclass)
}

func TestCollectAnomaliesUnresolvedFlagBits(t *testing.T) {
	super := "java/lang/Object"
	c := &Class{ThisClass: "com/example/Widget", SuperClass: &super}
	// 0x0008 (AccStatic) is not a valid class-scope bit.
	c.collectAnomalies(uint16(AccPublic)|0x0008, 2)
	require.Contains(t, c.Anomalies, AnoUnresolvedFlagBits)
}

func TestCollectAnomaliesEmptyConstantPool(t *testing.T) {
	super := "java/lang/Object"
	c := &Class{ThisClass: "com/example/Widget", SuperClass: &super}
	c.collectAnomalies(uint16(AccPublic), 1)
	require.Contains(t, c.Anomalies, AnoEmptyConstantPool)
}

func TestCollectAnomaliesUnknownAttributeInMethodCode(t *testing.T) {
	super := "java/lang/Object"
	c := &Class{
		ThisClass:  "com/example/Widget",
		SuperClass: &super,
		Methods: []Method{
			{
				Name: "run",
				Attributes: []Attribute{
					{Value: CodeAttr{Code: Code{
						Attributes: []Attribute{
							{Value: UnknownAttr{Name: "VendorSpecific", Info: []byte{1}}},
						},
					}}},
				},
			},
		},
	}
	c.collectAnomalies(uint16(AccPublic), 2)
	require.Contains(t, c.Anomalies, AnoUnknownAttribute)
}

func TestCollectAnomaliesCleanClass(t *testing.T) {
	super := "java/lang/Object"
	c := &Class{ThisClass: "com/example/Widget", SuperClass: &super}
	c.collectAnomalies(uint16(AccPublic), 3)
	require.Empty(t, c.Anomalies)
}
