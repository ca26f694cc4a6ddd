/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cfries/es256signature2020/keypair"
)

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a P-256 JsonWebKey2020 key pair",
		Args:  cobra.NoArgs,
		RunE:  runKeygen,
	}

	cmd.Flags().String("id", "", "key id. Defaults to <controller>#<JWK thumbprint>")
	cmd.Flags().String("controller", "", "key controller. Defaults to a urn:uuid identifier")
	cmd.Flags().String("did-document", "", "also write the controller document to this file")
	cmd.Flags().StringArray("relationship", []string{"assertionMethod"},
		"verification relationship listed in the controller document. Can be used multiple times")

	return cmd
}

func runKeygen(cmd *cobra.Command, _ []string) error {
	id, _ := cmd.Flags().GetString("id")                           //nolint:errcheck
	controller, _ := cmd.Flags().GetString("controller")           //nolint:errcheck
	didDocPath, _ := cmd.Flags().GetString("did-document")         //nolint:errcheck
	relationships, _ := cmd.Flags().GetStringArray("relationship") //nolint:errcheck

	if controller == "" {
		controller = "urn:uuid:" + uuid.NewString()
	}

	key, err := keypair.Generate(id, controller)
	if err != nil {
		return err
	}

	if id == "" {
		tp, err := key.Thumbprint()
		if err != nil {
			return err
		}

		key.ID = controller + "#" + tp
	}

	if didDocPath != "" {
		doc, err := key.ControllerDocument(relationships...)
		if err != nil {
			return err
		}

		if err = writeJSONFile(didDocPath, doc); err != nil {
			return err
		}
	}

	return writeJSON(cmd.OutOrStdout(), key)
}
