// compileinfoprint is imported by commands for the side effect of writing the
// build line to os.Stderr before main runs.
package compileinfoprint

import "github.com/carbocation/neutralfit/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
