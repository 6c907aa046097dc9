package version

import "runtime/debug"

// Name - The product name used in logs and outbound User-Agent headers.
const Name = "postguard"

var Revision string

func init() {
	if build, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range build.Settings {
			if setting.Key == "vcs.revision" {
				Revision = setting.Value
				return
			}
		}
	}

	Revision = "<unknown>"
}

func UserAgent() string {
	return Name + "/" + Revision
}
