// Package logcfg configures the application-wide logrus logger: level,
// caller-aware formatting and rotated file output.
package logcfg

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// RunLoggerConfig sets the logrus level, the text format with a short caller
// reference, and mirrors all output into a size-rotated log file.
func RunLoggerConfig(envLogLevel, logFileName string) {
	logLevel, err := logrus.ParseLevel(envLogLevel)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.SetLevel(logLevel)
	logrus.SetReportCaller(true)

	logrus.SetFormatter(&logrus.TextFormatter{
		CallerPrettyfier: func(f *runtime.Frame) (function string, file string) {
			_, filename := path.Split(f.File)
			filename = fmt.Sprintf("%s.%d.%s", filename, f.Line, f.Function)
			return "", filename
		},
	})

	mw := io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     30,
	})
	logrus.SetOutput(mw)
}
