package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

func validateOutputFormat(outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case "table":
	case "yaml":
	case "json":
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// printStructured prints obj as YAML or JSON. Table output is left to each
// command.
func printStructured(outputFormat string, obj interface{}, op string) error {
	var outBytes []byte
	var err error
	switch strings.ToLower(outputFormat) {
	case "yaml":
		outBytes, err = yaml.Marshal(obj)
	case "json":
		outBytes, err = json.MarshalIndent(obj, "", "  ")
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	if err != nil {
		return errors.Wrapf(err, "error formatting output from %s operation", op)
	}
	fmt.Println(string(outBytes))
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid ID %q", arg)
	}
	return id, nil
}
