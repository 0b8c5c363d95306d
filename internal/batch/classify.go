package batch

import "strings"

// Capability names the converter family a file requires.
type Capability string

const (
	// CapabilityXMLNative covers the OPC-container formats handled
	// in-process.
	CapabilityXMLNative Capability = "xml-native"
	// CapabilityOffice covers the binary formats that need an external
	// office engine.
	CapabilityOffice Capability = "office"
	// CapabilityUnsupported means the file is left untouched and reported
	// as skipped. A skip is not an error.
	CapabilityUnsupported Capability = "unsupported"
)

var capabilities = map[string]Capability{
	".vsdx": CapabilityXMLNative,
	".vsdm": CapabilityXMLNative,
	".vsd":  CapabilityOffice,
	".vdw":  CapabilityOffice,
}

// Classify maps a filename extension (with leading dot) to the converter
// capability it requires. Unknown extensions are never routed to a
// converter.
func Classify(ext string) Capability {
	if c, ok := capabilities[strings.ToLower(ext)]; ok {
		return c
	}
	return CapabilityUnsupported
}
