// SPDX-License-Identifier: MIT
// Package: generator
//
// yaml.go — hand-authored instances.

package generator

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadInstance decodes one YAML instance. Unknown keys are rejected. When
// bids are omitted every budget is split evenly (EqualSplit). The result is
// validated before it is returned.
func ReadInstance(r io.Reader) (Instance, error) {
	var in Instance
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return Instance{}, fmt.Errorf("empty instance: %w", ErrBadParameter)
		}
		return Instance{}, fmt.Errorf("decode instance: %w: %w", ErrBadParameter, err)
	}
	if len(in.Bids) == 0 {
		in.Bids = EqualSplit(in.Budget, in.Goods())
	}
	if err := in.Validate(); err != nil {
		return Instance{}, err
	}

	return in, nil
}

// LoadInstance reads an instance from a YAML file.
func LoadInstance(path string) (Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return Instance{}, fmt.Errorf("open instance: %w", err)
	}
	defer f.Close()

	in, err := ReadInstance(f)
	if err != nil {
		return Instance{}, fmt.Errorf("%s: %w", path, err)
	}

	return in, nil
}

// WriteYAML encodes the instance in the format ReadInstance accepts.
func (in Instance) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("encode instance: %w", err)
	}

	return enc.Close()
}
