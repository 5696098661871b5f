// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/jsonrpc"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewCallCommand creates the call subcommand.
//
// The request is taken from the single argument, from --file, or from stdin.
// The indented response goes to stdout and a one-line outcome to stderr. A
// JSON-RPC error in the response is not a command failure; an unreadable
// request or a dispatcher that cannot be built is.
func NewCallCommand(factory DispatcherFactory) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "call [REQUEST_JSON]",
		Short: "Dispatch one JSON-RPC request in-process and print the response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}

			req, err := jsonrpc.Decode(payload)
			if err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}

			d, err := factory()
			if err != nil {
				return err
			}

			resp := d.Handle(cmd.Context(), req)
			if req.IsNotification() {
				printNotification(cmd.ErrOrStderr(), req.Method)
				return nil
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			printOutcome(cmd.ErrOrStderr(), req.Method, resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the request from FILE")
	return cmd
}

func printOutcome(w io.Writer, method string, resp jsonrpc.Response) {
	if resp.Error != nil {
		red := color.New(color.FgRed)
		red.Fprintf(w, "✗ %s failed: %d %s\n", method, resp.Error.Code, resp.Error.Message)
		return
	}
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s succeeded\n", method)
}

func printNotification(w io.Writer, method string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(w, "• %s sent as notification, no response\n", method)
}
