// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command relay-client submits an ABI-encoded allocation request to a
// relay service for off-chain execution, proving, and on-chain callback.
// It is the Go counterpart of the relay SDK's offchain_request example:
// it derives the onResult callback's function selector itself rather than
// relying on the callback contract's own ABI, since the relay never needs
// more than the selector bytes.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"

	log "github.com/luxfi/log"
)

var logger = log.NewTestLogger(log.InfoLevel)

// onResultSignature must match the tuple shape Encode produces (abi.go):
// ((address,uint256)[], uint256, uint256, bool).
const onResultSignature = "onResult((address,uint256)[],uint256,uint256,bool)"

// onResultSelector returns the 4-byte function selector for onResultSignature.
func onResultSelector() []byte {
	return crypto.Keccak256([]byte(onResultSignature))[:4]
}

// callbackRequest mirrors bonsai_ethereum_relay::sdk::client::CallbackRequest.
type callbackRequest struct {
	CallbackContract common.Address `json:"callback_contract"`
	FunctionSelector []byte         `json:"function_selector"`
	GasLimit         uint64         `json:"gas_limit"`
	ImageID          string         `json:"image_id"`
	Input            []byte         `json:"input"`
}

func main() {
	var (
		relayAPIURL string
		relayAPIKey string
		imageID     string
		gasLimit    uint64
	)

	cmd := &cobra.Command{
		Use:   "relay-client <callback-address> <abi-encoded-data-hex>",
		Short: "Submit an allocation request to the relay for proving and callback",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if relayAPIKey == "" {
				return fmt.Errorf("relay API key is required (set --relay-api-key or RELAY_API_KEY)")
			}
			if imageID == "" {
				return fmt.Errorf("image id is required (set --image-id or RELAY_IMAGE_ID)")
			}

			callbackAddress := common.HexToAddress(args[0])
			input, err := hex.DecodeString(trimHexPrefix(args[1]))
			if err != nil {
				return fmt.Errorf("decoding abi-encoded-data as hex: %w", err)
			}

			selector := onResultSelector()

			req := callbackRequest{
				CallbackContract: callbackAddress,
				FunctionSelector: selector,
				GasLimit:         gasLimit,
				ImageID:          imageID,
				Input:            input,
			}

			logger.Info("submitting callback request", "url", relayAPIURL, "selector", hex.EncodeToString(selector), "input_bytes", len(input))
			return submit(relayAPIURL, relayAPIKey, req)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&relayAPIURL, "relay-api-url", envOrDefault("RELAY_API_URL", "http://localhost:8080"), "relay REST API base URL")
	flags.StringVar(&relayAPIKey, "relay-api-key", os.Getenv("RELAY_API_KEY"), "relay API key (required; an empty value is rejected)")
	flags.StringVar(&imageID, "image-id", os.Getenv("RELAY_IMAGE_ID"), "guest image id the relay should prove against")
	flags.Uint64Var(&gasLimit, "gas-limit", 3_000_000, "gas limit for the on-chain callback")

	if err := cmd.Execute(); err != nil {
		logger.Error("relay-client failed", "error", err)
		os.Exit(1)
	}
}

func submit(baseURL, apiKey string, req callbackRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling callback request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/callback", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building callback request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending callback request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("relay returned status %s", resp.Status)
	}
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
