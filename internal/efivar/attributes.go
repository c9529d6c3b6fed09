// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package efivar

import "strings"

// Attributes is the EFI variable attribute bit mask.
type Attributes uint32

const (
	AttrNonVolatile                       Attributes = 0x00000001
	AttrBootServiceAccess                 Attributes = 0x00000002
	AttrRuntimeAccess                     Attributes = 0x00000004
	AttrHardwareErrorRecord               Attributes = 0x00000008
	AttrAuthenticatedWriteAccess          Attributes = 0x00000010
	AttrTimeBasedAuthenticatedWriteAccess Attributes = 0x00000020
	AttrAppendWrite                       Attributes = 0x00000040
)

// PersistentRuntime is the attribute set for variables that survive power loss
// and are visible both to boot-time firmware services and the running OS.
const PersistentRuntime = AttrNonVolatile | AttrBootServiceAccess | AttrRuntimeAccess

var attrNames = []struct {
	bit  Attributes
	name string
}{
	{AttrNonVolatile, "NV"},
	{AttrBootServiceAccess, "BS"},
	{AttrRuntimeAccess, "RT"},
	{AttrHardwareErrorRecord, "HR"},
	{AttrAuthenticatedWriteAccess, "AW"},
	{AttrTimeBasedAuthenticatedWriteAccess, "AT"},
	{AttrAppendWrite, "AP"},
}

// String renders the set bits as a "NV|BS|RT" style list.
func (a Attributes) String() string {
	if a == 0 {
		return "none"
	}
	parts := make([]string, 0, len(attrNames))
	for _, n := range attrNames {
		if a&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}
