package requestinfo

import (
	"strconv"
	"strings"

	"github.com/avct/uasurfer"
)

var deviceNames = map[uasurfer.DeviceType]string{
	uasurfer.DeviceComputer: "Desktop",
	uasurfer.DevicePhone:    "Phone",
	uasurfer.DeviceTablet:   "Tablet",
	uasurfer.DeviceConsole:  "Console",
	uasurfer.DeviceWearable: "Wearable",
	uasurfer.DeviceTV:       "TV",
}

// parseUA maps a raw User-Agent onto UA.  PrimaryLang is left empty; it
// depends on Accept-Language and is filled per request.
func parseUA(raw string) UA {
	u := uasurfer.Parse(raw)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	device, ok := deviceNames[u.DeviceType]
	if !ok {
		device = "Unknown"
	}
	if u.IsBot() {
		device = "Bot"
	}

	return UA{
		Raw:       raw,
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   shortVersion(u.Browser.Version),
		OS:        osName,
		OSVersion: shortVersion(u.OS.Version),
		Device:    device,
		Platform:  strings.TrimPrefix(u.OS.Platform.String(), "Platform"),
		IsBot:     u.IsBot(),
	}
}

// shortVersion renders major[.minor[.patch]], dropping trailing zeros.
func shortVersion(v uasurfer.Version) string {
	parts := []int{v.Major, v.Minor, v.Patch}
	n := len(parts)
	for n > 1 && parts[n-1] == 0 {
		n--
	}
	out := make([]string, n)
	for i := range n {
		out[i] = strconv.Itoa(parts[i])
	}
	return strings.Join(out, ".")
}

// primaryLang returns the first Accept-Language tag without its q-value.
func primaryLang(header string) string {
	tag, _, _ := strings.Cut(header, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}
