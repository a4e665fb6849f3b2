package utils

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

var panicFilename = "panic_dump"

// LogRecovered logs a value recovered from a panic in what along with the
// stack of the panicking goroutine and dumps both to a file.  It must be
// called from the deferred function that recovered.
func LogRecovered(what string, r interface{}) {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	log.Errorf("Panic from %v: %v", what, r)
	log.Errorf("Stack Trace ==>\n %s", string(buf[:n]))
	log.Infof("Recovering...")
	_ = DumpPanicInfo(fmt.Sprintf("%v: %v", what, r) + "\n" + string(buf[:n]))
}

func DumpPanicInfo(info string) error {
	currentTime := time.Now()
	fileSuffix := currentTime.Format("20060102150405") + "_" + strconv.FormatInt(currentTime.Unix(), 10)
	fileName := panicFilename + "_" + fileSuffix
	log.Infof("Dumping panic info to %v...", fileName)
	err := os.WriteFile(fileName, []byte(info), 0600)
	if err != nil {
		log.Errorf("Unable to write panic file %v", fileName)
		return err
	}
	return nil
}
