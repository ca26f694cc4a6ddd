/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trustbloc/did-go/doc/ld/processor"

	"github.com/cfries/es256signature2020/keypair"
	"github.com/cfries/es256signature2020/ld/documentloader"
	"github.com/cfries/es256signature2020/ld/purpose"
	"github.com/cfries/es256signature2020/signature/suite/es256signature2020"
	"github.com/cfries/es256signature2020/verifiable/lddocument"
)

// ErrNotVerified is returned by the verify command when the document does not verify.
var ErrNotVerified = errors.New("document not verified")

type proofOutput struct {
	VerificationMethod string `json:"verificationMethod,omitempty"`
	Verified           bool   `json:"verified"`
	Error              string `json:"error,omitempty"`
}

type verifyOutput struct {
	Verified bool          `json:"verified"`
	Results  []proofOutput `json:"results,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the EcdsaSecp256r1Signature2019 proofs of a JSON-LD document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, v)
		},
	}

	cmd.Flags().StringP("in", "i", "-", "signed document. Use '-' for stdin")
	cmd.Flags().StringP("key", "k", "", "key pair file; its key is used instead of the resolved one")
	cmd.Flags().String("issuer", "", "expected controller of the verification method")
	cmd.Flags().Bool("check-issuer", false, "require the document issuer to control the verification method")
	addPurposeFlags(cmd)

	return cmd
}

func runVerify(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	in, _ := cmd.Flags().GetString("in")                  //nolint:errcheck
	keyPath, _ := cmd.Flags().GetString("key")            //nolint:errcheck
	issuer, _ := cmd.Flags().GetString("issuer")          //nolint:errcheck
	checkIssuer, _ := cmd.Flags().GetBool("check-issuer") //nolint:errcheck

	raw, err := readInput(cmd, in)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	proofPurpose, err := purposeFromFlags(cmd)
	if err != nil {
		return err
	}

	loader, err := cfg.DocumentLoader()
	if err != nil {
		return err
	}

	var suiteOpts []es256signature2020.Opt

	if keyPath != "" {
		keyData, err := readInput(cmd, keyPath)
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}

		key, err := keypair.Parse(keyData)
		if err != nil {
			return fmt.Errorf("parse key: %w", err)
		}

		public, err := key.Public()
		if err != nil {
			return err
		}

		suiteOpts = append(suiteOpts, es256signature2020.WithKey(public))

		if err = addControllerDocument(loader, public); err != nil {
			return err
		}
	}

	suite, err := es256signature2020.New(suiteOpts...)
	if err != nil {
		return err
	}

	resolver, err := cfg.Resolver(loader)
	if err != nil {
		return err
	}

	verifierOpts := []lddocument.VerifierOpt{lddocument.WithPurpose(proofPurpose)}

	if issuer != "" {
		verifierOpts = append(verifierOpts, lddocument.WithExpectedIssuer(issuer))
	}

	if checkIssuer {
		verifierOpts = append(verifierOpts, lddocument.WithIssuerFromDocument())
	}

	dv := lddocument.NewDocumentVerifier(resolver, []lddocument.VerificationSuite{suite}, verifierOpts...)

	result, err := dv.Verify(raw, processor.WithDocumentLoader(loader))
	if err != nil {
		return err
	}

	out := verifyOutput{
		Verified: result.Verified,
		Results: lo.Map(result.Results, func(r lddocument.ProofResult, _ int) proofOutput {
			return proofOutput{
				VerificationMethod: r.VerificationMethod,
				Verified:           r.Verified,
				Error:              errorString(r.Error),
			}
		}),
		Error: errorString(result.Error),
	}

	if err = writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}

	if !result.Verified {
		return ErrNotVerified
	}

	return nil
}

// addControllerDocument makes the key's controller document loadable unless a static or
// remote source already provides it.
func addControllerDocument(loader *documentloader.DocumentLoader, key *keypair.KeyDescriptor) error {
	if key.Controller == "" {
		return nil
	}

	if _, err := loader.LoadDocument(key.Controller); err == nil {
		return nil
	}

	doc, err := key.ControllerDocument(purpose.AssertionMethod, purpose.Authentication)
	if err != nil {
		return err
	}

	logger.Debugf("using controller document of %s from key file", key.Controller)

	return loader.AddDocument(key.Controller, doc)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
