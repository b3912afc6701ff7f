// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

// ResolvePassword returns a kong.Resolver that prompts on the terminal for
// required 'password' typed flags left unset. With confirm the password has
// to be entered twice.
func ResolvePassword(confirm bool) kong.Resolver {
	return kong.ResolverFunc(func(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		if flag.Tag.Type != "password" || !flag.Required || flag.Value.Set && !flag.Value.Target.IsZero() {
			return nil, nil
		}
		if flag.Target.Kind() != reflect.String {
			return nil, fmt.Errorf(`'password' type must be applied to a string not %s`, flag.Target.Type())
		}
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return nil, nil
		}

		fmt.Fprintf(os.Stderr, "No value has been provided for flag `%s`.\n", flag.ShortSummary())
		if flag.Help != "" {
			fmt.Fprintln(os.Stderr, "Description: "+flag.Help)
		}
		for {
			pwd, err := readPassword(fd, "Enter "+strings.ToTitle(flag.Name))
			if err != nil || pwd == "" {
				return nil, err
			}
			if !confirm {
				return pwd, nil
			}
			pwd2, err := readPassword(fd, "Re-enter "+strings.ToTitle(flag.Name))
			if err != nil {
				return nil, err
			}
			if pwd == pwd2 {
				return pwd, nil
			}
			fmt.Fprintln(os.Stderr, "Passwords do not match. Please try again.")
		}
	})
}

func readPassword(fd int, prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprint(os.Stderr, "\n")
	if err != nil {
		return "", fmt.Errorf("password could not be read: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
