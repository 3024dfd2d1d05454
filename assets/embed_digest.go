// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build linux && ignore
// +build linux,ignore

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stdout)
}

func main() {
	var err error
	var digest []byte

	if p := os.Getenv("ROM_DIGEST"); len(p) > 0 {
		digest, err = os.ReadFile(p)

		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Fatal("ROM_DIGEST environment variable must be defined (see README.md)")
	}

	if len(digest) != 32 {
		log.Fatalf("invalid ROM digest size %d", len(digest))
	}

	out, err := os.Create("tmp-provisioning.go")

	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	out.WriteString(`
package assets

func init() {
`)
	out.WriteString(fmt.Sprintf("\tExpectedDigest = []byte(%s)\n", strconv.Quote(string(digest))))
	out.WriteString(`
}
`)
}
