package sensor

// thinkpadChannels is the temperature channel layout thinkpad_acpi documents
// for most models. Channels 12-16 exist electrically but are unused.
var thinkpadChannels = []string{
	"CPU",
	"Mini PCI / HDD",
	"Embedded controller",
	"GPU",
	"Main battery",
	"Bay battery",
	"Main battery (2)",
	"Bay battery (2)",
	"Northbridge",
	"Southbridge",
	"Power regulator",
}

// DefaultLabel returns the conventional name of the 1-based channel index,
// or "" when the channel has no conventional use.
func DefaultLabel(index int) string {
	if index < 1 || index > len(thinkpadChannels) {
		return ""
	}
	return thinkpadChannels[index-1]
}

// DefaultLabels returns the conventional names of all labelled channels,
// positionally.
func DefaultLabels() []string {
	out := make([]string, len(thinkpadChannels))
	copy(out, thinkpadChannels)
	return out
}
