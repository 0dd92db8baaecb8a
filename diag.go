// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"os"

	"github.com/go-kratos/kratos/v2/log"
)

// Logger is the structured logger interface accepted by Options. Any
// go-kratos log.Logger implementation works, including log.NewStdLogger
// wrapping an arbitrary io.Writer.
type Logger = log.Logger

// newDiagLogger wraps logger (or a stderr-backed default, filtered down to
// Error) into the log.Helper used internally to report non-fatal parse
// anomalies without aborting the read.
func newDiagLogger(logger Logger) *log.Helper {
	if logger == nil {
		logger = log.NewStdLogger(os.Stderr)
		return log.NewHelper(log.NewFilter(logger, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(logger)
}
