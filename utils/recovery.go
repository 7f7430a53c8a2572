package utils

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

var panicFilename = "panic_dump"

func MyRecover() {
	if err := recover(); err != nil {
		fmt.Println(err)
		var buf [4096]byte
		n := runtime.Stack(buf[:], false)
		fmt.Printf("Stack Trace ==> %s\n", string(buf[:n]))
		fmt.Println("Recovering...")
		// Dump panic file
		_ = DumpPanicInfo(fmt.Sprintf("%v", err) + "\n" + string(buf[:n]))
	}
}

func DumpPanicInfo(info string) error {
	currentTime := time.Now()
	fileSuffix := currentTime.Format("20060102150405") + "_" + strconv.FormatInt(currentTime.Unix(), 10)
	fileName := panicFilename + "_" + fileSuffix
	log.Info("dumping panic info", "file", fileName)
	err := os.WriteFile(fileName, []byte(info), 0666)
	if err != nil {
		log.Error("unable to write panic file", "file", fileName, "err", err)
		return err
	}
	return nil
}
