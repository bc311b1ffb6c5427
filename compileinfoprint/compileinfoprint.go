// compileinfoprint is blank-imported by the uncrej binaries to log their build
// information to os.Stderr at startup.
package compileinfoprint

import "github.com/carbocation/uncrej/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
