// Copyright © 2022 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Modified for balancechart: options, sorted-field formatting and log file naming.

// logger sets up the process-wide logrus logger: level, caller reporting, a compact
// console format and an optional rotating log file.
package logger

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type LogOptions struct {
	// Debug enables debug level; info otherwise.
	Debug bool
	// DisableColor disables console colors, e.g. when stderr is not a terminal.
	DisableColor bool
	// LogDir, if set, also writes every entry to a daily rotated file in this directory.
	LogDir string
	// Output overrides stderr; used by tests.
	Output io.Writer
}

func Init(options LogOptions) error {
	if options.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.SetReportCaller(true)
	logrus.SetFormatter(&Formatter{
		DisableColor: options.DisableColor,
	})
	if options.Output != nil {
		logrus.SetOutput(options.Output)
	}

	if options.LogDir != "" {
		fh, err := NewFileHook(options.LogDir)
		if err != nil {
			return errors.Wrap(err, "failed to init log file hook")
		}
		logrus.AddHook(fh)
	}
	return nil
}
