// Copyright 2023 Google Inc. All Rights Reserved.
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

package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textTraceString    = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=TRACE message=\"TestLogs: www.traceExample.com\""
	textDebugString    = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=DEBUG message=\"TestLogs: www.debugExample.com\""
	textInfoString     = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=INFO message=\"TestLogs: www.infoExample.com\""
	textWarnString     = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=WARN message=\"TestLogs: www.warnExample.com\""
	textErrorString    = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=ERROR message=\"TestLogs: www.errorExample.com\""
	textCriticalString = "^time=\"[a-zA-Z0-9/:. ]{26}\" severity=CRITICAL message=\"TestLogs: www.criticalExample.com\""

	jsonTraceString    = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"TRACE\",\"message\":\"TestLogs: www.traceExample.com\"}"
	jsonDebugString    = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"DEBUG\",\"message\":\"TestLogs: www.debugExample.com\"}"
	jsonInfoString     = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"INFO\",\"message\":\"TestLogs: www.infoExample.com\"}"
	jsonWarnString     = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"WARN\",\"message\":\"TestLogs: www.warnExample.com\"}"
	jsonErrorString    = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"ERROR\",\"message\":\"TestLogs: www.errorExample.com\"}"
	jsonCriticalString = "^{\"timestamp\":{\"seconds\":\\d{10},\"nanos\":\\d{0,9}},\"severity\":\"CRITICAL\",\"message\":\"TestLogs: www.criticalExample.com\"}"
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

// //////////////////////////////////////////////////////////////////////
// Boilerplate
// //////////////////////////////////////////////////////////////////////

func redirectLogsToGivenBuffer(buf *bytes.Buffer, level string) {
	var programLevel = new(slog.LevelVar)
	defaultLogger = slog.New(
		defaultLoggerFactory.createJsonOrTextHandler(buf, programLevel, "TestLogs: "),
	)
	setLoggingLevel(level, programLevel)
}

// fetchLogOutputForSpecifiedSeverityLevel takes configured severity and
// functions that write logs as parameter and returns string array containing
// output from each function call.
func fetchLogOutputForSpecifiedSeverityLevel(level string, functions []func()) []string {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, level)

	var output []string
	for _, f := range functions {
		f()
		output = append(output, buf.String())
		buf.Reset()
	}
	return output
}

func getTestLoggingFunctions() []func() {
	return []func(){
		func() { Tracef("www.traceExample.com") },
		func() { Debugf("www.debugExample.com") },
		func() { Infof("www.infoExample.com") },
		func() { Warnf("www.warnExample.com") },
		func() { Errorf("www.errorExample.com") },
		func() { Criticalf("www.criticalExample.com") },
	}
}

func validateOutput(t *testing.T, expected []string, output []string) {
	for i := range output {
		if expected[i] == "" {
			assert.Equal(t, expected[i], output[i])
		} else {
			expectedRegexp := regexp.MustCompile(expected[i])
			assert.True(t, expectedRegexp.MatchString(output[i]))
		}
	}
}

func validateLogOutputAtSpecifiedFormatAndSeverity(t *testing.T, format string, level string, expectedOutput []string) {
	defaultLoggerFactory.format = format

	output := fetchLogOutputForSpecifiedSeverityLevel(level, getTestLoggingFunctions())

	validateOutput(t, expectedOutput, output)
}

// //////////////////////////////////////////////////////////////////////
// Tests
// //////////////////////////////////////////////////////////////////////

func (t *LoggerTest) TestTextFormatLogs_LogLevelOFF() {
	expected := []string{"", "", "", "", "", ""}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", Off, expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelCRITICAL() {
	expected := []string{"", "", "", "", "", textCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", Critical, expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelERROR() {
	expected := []string{"", "", "", "", textErrorString, textCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", Error, expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelWARN() {
	expected := []string{"", "", "", textWarnString, textErrorString, textCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", Warn, expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelINFO() {
	expected := []string{"", "", textInfoString, textWarnString, textErrorString, textCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", Info, expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelDEBUG() {
	expected := []string{"", textDebugString, textInfoString, textWarnString, textErrorString, textCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", Debug, expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelTRACE() {
	expected := []string{textTraceString, textDebugString, textInfoString, textWarnString, textErrorString, textCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", Trace, expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelOFF() {
	expected := []string{"", "", "", "", "", ""}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", Off, expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelERROR() {
	expected := []string{"", "", "", "", jsonErrorString, jsonCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", Error, expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelWARN() {
	expected := []string{"", "", "", jsonWarnString, jsonErrorString, jsonCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", Warn, expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelINFO() {
	expected := []string{"", "", jsonInfoString, jsonWarnString, jsonErrorString, jsonCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", Info, expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelDEBUG() {
	expected := []string{"", jsonDebugString, jsonInfoString, jsonWarnString, jsonErrorString, jsonCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", Debug, expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelTRACE() {
	expected := []string{jsonTraceString, jsonDebugString, jsonInfoString, jsonWarnString, jsonErrorString, jsonCriticalString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", Trace, expected)
}

func (t *LoggerTest) TestSetLoggingLevel() {
	testData := []struct {
		inputLevel           string
		expectedProgramLevel slog.Level
	}{
		{Trace, LevelTrace},
		{Debug, LevelDebug},
		{Info, LevelInfo},
		{Warn, LevelWarn},
		{Error, LevelError},
		{Critical, LevelCritical},
		{Off, LevelOff},
	}

	for _, test := range testData {
		programLevel := new(slog.LevelVar)
		setLoggingLevel(test.inputLevel, programLevel)
		assert.Equal(t.T(), test.expectedProgramLevel, programLevel.Level())
	}
}

func (t *LoggerTest) TestInitLogger() {
	dir := t.T().TempDir()
	filePath := filepath.Join(dir, "log.txt")
	f, err := os.Create(filePath)
	assert.NoError(t.T(), err)
	defer f.Close()

	InitLogger(f, "text", Debug)

	assert.Equal(t.T(), "text", defaultLoggerFactory.format)
	assert.Equal(t.T(), LevelDebug, defaultLoggerFactory.level.Level())
}

func (t *LoggerTest) TestSetLogFormat() {
	defaultLoggerFactory = &loggerFactory{
		writer: nil,
		format: "text",
		level:  new(slog.LevelVar),
	}
	defaultLoggerFactory.level.Set(LevelInfo)

	testData := []struct {
		format         string
		expectedOutput string
	}{
		{"text", textInfoString},
		{"json", jsonInfoString},
		{"", jsonInfoString},
	}

	for _, test := range testData {
		SetLogFormat(test.format)

		assert.NotNil(t.T(), defaultLoggerFactory)
		assert.NotNil(t.T(), defaultLogger)
		var buf bytes.Buffer
		defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(&buf, defaultLoggerFactory.level, "TestLogs: "))
		Infof("www.infoExample.com")
		output := buf.String()
		expectedRegexp := regexp.MustCompile(test.expectedOutput)
		assert.True(t.T(), expectedRegexp.MatchString(output))
	}
}
