// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Anomalies reported on a parsed Class. These never prevent a class from
// loading under a real JVM; they flag shapes worth a second look when
// triaging obfuscated or hand-assembled class files.
var (
	// AnoUnknownAttribute is reported when an attribute name is not one this
	// codec decodes; its bytes are preserved opaquely (UnknownAttr).
	AnoUnknownAttribute = "attribute name not recognised, preserved as opaque bytes"

	// AnoUnresolvedFlagBits is reported when the class's own access_flags
	// carries bits outside the class flag table; those bits are dropped on
	// decode. Field, method and parameter flags are not checked.
	AnoUnresolvedFlagBits = "access_flags contains bits outside the scope's flag table"

	// AnoMissingSuperclass is reported when super_class_index is 0 for a
	// class other than java/lang/Object, the only class with no superclass.
	AnoMissingSuperclass = "super_class is absent but this_class is not java/lang/Object"

	// AnoEmptyConstantPool is reported when the constant pool has no
	// occupied slots at all.
	AnoEmptyConstantPool = "constant pool has no occupied entries"

	// AnoZeroInterfaces is purely informational and never added automatically;
	// kept for callers that want to report it explicitly.
	AnoZeroInterfaces = "class declares no interfaces"
)

// addAnomaly appends anomaly to c.Anomalies if not already present.
func (c *Class) addAnomaly(anomaly string) {
	for _, a := range c.Anomalies {
		if a == anomaly {
			return
		}
	}
	c.Anomalies = append(c.Anomalies, anomaly)
}

// collectAnomalies inspects an already-resolved Class and records the
// structural anomalies listed above. rawAccessFlags is the access_flags
// word as it appeared on the wire, before DecodeFlags dropped any bits.
func (c *Class) collectAnomalies(rawAccessFlags uint16, poolLen int) {
	if c.ThisClass != "java/lang/Object" && c.SuperClass == nil {
		c.addAnomaly(AnoMissingSuperclass)
	}
	if DecodeFlags(ScopeClass, rawAccessFlags).Encode() != rawAccessFlags {
		c.addAnomaly(AnoUnresolvedFlagBits)
	}
	if poolLen <= 1 {
		c.addAnomaly(AnoEmptyConstantPool)
	}
	if attributesContainUnknown(c.Attributes) {
		c.addAnomaly(AnoUnknownAttribute)
	}
	for _, f := range c.Fields {
		if attributesContainUnknown(f.Attributes) {
			c.addAnomaly(AnoUnknownAttribute)
			break
		}
	}
	for _, m := range c.Methods {
		if methodHasUnknownAttribute(m) {
			c.addAnomaly(AnoUnknownAttribute)
			break
		}
	}
}

func attributesContainUnknown(attrs []Attribute) bool {
	for _, a := range attrs {
		if _, ok := a.Value.(UnknownAttr); ok {
			return true
		}
	}
	return false
}

func methodHasUnknownAttribute(m Method) bool {
	if attributesContainUnknown(m.Attributes) {
		return true
	}
	for _, a := range m.Attributes {
		if code, ok := a.Value.(CodeAttr); ok {
			if attributesContainUnknown(code.Code.Attributes) {
				return true
			}
		}
	}
	return false
}
