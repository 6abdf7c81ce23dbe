// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package debuglog

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_Configure(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.Out = &out
	Configure(Options{Logger: logger})
	logger.WithField("edge", "e0").Info("hello")
	line := out.String()
	assert.Contains(t, line, "UTC")
	assert.Contains(t, line, "edge=e0")
	assert.Contains(t, line, "hello")
	assert.Contains(t, line, "util/debuglog/setup_test.go")
	assert.NotContains(t, line, "/util/debuglog/setup_test.go")
}

func Test_Configure_level(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.Out = &out
	Configure(Options{Logger: logger, Level: logrus.WarnLevel})
	logger.Info("quiet")
	assert.Empty(t, out.String())
	logger.Warn("loud")
	assert.Contains(t, out.String(), "loud")

	// Configuring again must not stack up duplicate hooks.
	Configure(Options{Logger: logger, Level: logrus.WarnLevel})
	for _, level := range logrus.AllLevels {
		assert.Len(t, logger.Hooks[level], 2)
	}
}
