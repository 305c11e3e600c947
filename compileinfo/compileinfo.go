// Package compileinfo reports which build of neutralfit produced a result.
package compileinfo

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Binary     string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	if c.Binary == "" {
		return "neutralfit build information unavailable"
	}

	out := fmt.Sprintf("%s %s (%s", c.Binary, c.Version, c.GoVersion)
	if c.Commit != "" {
		out += fmt.Sprintf(", commit %s at %s", c.Short(), c.CommitTime)
	}
	if c.Modified {
		out += ", modified"
	}
	return out + ")"
}

// Short is the abbreviated commit hash.
func (c CompileInfo) Short() string {
	if len(c.Commit) > 12 {
		return c.Commit[:12]
	}
	return c.Commit
}

func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Binary = z.Path
	out.Version = z.Main.Version
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Fprint writes the build line to w.
func Fprint(w io.Writer) error {
	_, err := fmt.Fprintln(w, Get())
	return err
}

func PrintToStdErr() {
	Fprint(os.Stderr)
}
