package admin

import "runtime"

var isWindows = runtime.GOOS == "windows"
