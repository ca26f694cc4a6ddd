/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trustbloc/did-go/doc/ld/processor"

	"github.com/cfries/es256signature2020/keypair"
	"github.com/cfries/es256signature2020/ld/purpose"
	"github.com/cfries/es256signature2020/signature/suite/es256signature2020"
	jsonutil "github.com/cfries/es256signature2020/util/json"
	"github.com/cfries/es256signature2020/verifiable/lddocument"
)

func newSignCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Add an EcdsaSecp256r1Signature2019 proof to a JSON-LD document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSign(cmd, v)
		},
	}

	cmd.Flags().StringP("key", "k", "", "key pair file with privateKeyJwk")
	cmd.Flags().StringP("in", "i", "-", "document to sign. Use '-' for stdin")
	addPurposeFlags(cmd)
	cmd.Flags().String("created", "", "proof creation time (RFC 3339). Defaults to now")
	cmd.Flags().Bool("assign-id", false, "add a urn:uuid id to documents without one")

	return cmd
}

func addPurposeFlags(cmd *cobra.Command) {
	cmd.Flags().String("purpose", purpose.AssertionMethod, "proof purpose: assertionMethod or authentication")
	cmd.Flags().String("challenge", "", "challenge for the authentication purpose")
	cmd.Flags().String("domain", "", "domain for the authentication purpose")
}

func purposeFromFlags(cmd *cobra.Command, opts ...purpose.Opt) (purpose.ProofPurpose, error) {
	term, _ := cmd.Flags().GetString("purpose")        //nolint:errcheck
	challenge, _ := cmd.Flags().GetString("challenge") //nolint:errcheck
	domain, _ := cmd.Flags().GetString("domain")       //nolint:errcheck

	return purpose.FromTerm(term, challenge, domain, opts...)
}

func runSign(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	keyPath, _ := cmd.Flags().GetString("key")        //nolint:errcheck
	in, _ := cmd.Flags().GetString("in")              //nolint:errcheck
	createdStr, _ := cmd.Flags().GetString("created") //nolint:errcheck
	assignID, _ := cmd.Flags().GetBool("assign-id")   //nolint:errcheck

	if keyPath == "" {
		return fmt.Errorf("--key is required")
	}

	keyData, err := readInput(cmd, keyPath)
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}

	key, err := keypair.Parse(keyData)
	if err != nil {
		return fmt.Errorf("parse key: %w", err)
	}

	raw, err := readInput(cmd, in)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	doc, err := jsonutil.ToMap(raw)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	if _, ok := doc["id"]; !ok && assignID {
		doc["id"] = "urn:uuid:" + uuid.NewString()
	}

	proofPurpose, err := purposeFromFlags(cmd)
	if err != nil {
		return err
	}

	signingCtx := &lddocument.SigningContext{Purpose: proofPurpose}

	if createdStr != "" {
		created, err := time.Parse(time.RFC3339, createdStr)
		if err != nil {
			return fmt.Errorf("parse created: %w", err)
		}

		signingCtx.Created = &created
	}

	loader, err := cfg.DocumentLoader()
	if err != nil {
		return err
	}

	suite, err := es256signature2020.New(es256signature2020.WithKey(key))
	if err != nil {
		return err
	}

	err = lddocument.NewDocumentSigner(suite).Sign(signingCtx, doc, processor.WithDocumentLoader(loader))
	if err != nil {
		return fmt.Errorf("sign document: %w", err)
	}

	return writeJSON(cmd.OutOrStdout(), doc)
}
