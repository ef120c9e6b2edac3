/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/scoir/procyon/pkg/didcomm/verifier"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the didcomm verifier service",
	Long:  `Starts the didcomm verifier service`,
	Run:   runStart,
}

func runStart(_ *cobra.Command, _ []string) {
	srv, err := verifier.New(ctx)
	if err != nil {
		log.Fatalln("unable to initialize verifier", err)
	}

	err = srv.Run()
	if err != nil {
		log.Fatalln("verifier errored with", err)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
