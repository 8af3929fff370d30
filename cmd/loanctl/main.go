package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	httpcli   = &http.Client{Timeout: 30 * time.Second}
)

func main() {
	root := &cobra.Command{
		Use:           "loanctl",
		Short:         "Operate the home loan orchestrator from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the api service")

	root.AddCommand(submitCmd(), uploadCmd(), processCmd(), progressCmd(), resultCmd(), documentsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func submitCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new loan application from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			return postJSON("/v1/applications", payload)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to applicant JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func uploadCmd() *cobra.Command {
	var kind, file string
	cmd := &cobra.Command{
		Use:   "upload <application-id>",
		Short: "Upload a KYC document for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			var body bytes.Buffer
			writer := multipart.NewWriter(&body)
			if err := writer.WriteField("kind", kind); err != nil {
				return err
			}
			part, err := writer.CreateFormFile("file", filepath.Base(file))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
			if err := writer.Close(); err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/applications/%s/documents", serverURL, args[0])
			resp, err := httpcli.Post(url, writer.FormDataContentType(), &body)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			return printResponse(resp)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "document kind: pan, aadhaar, company_id, payslip")
	cmd.Flags().StringVar(&file, "file", "", "path to document file")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <application-id>",
		Short: "Start processing an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON(fmt.Sprintf("/v1/applications/%s/process", args[0]), nil)
		},
	}
}

func progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <application-id>",
		Short: "Show per-stage progress for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get(fmt.Sprintf("/v1/applications/%s/progress", args[0]))
		},
	}
}

func resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <application-id>",
		Short: "Fetch the processing result for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get(fmt.Sprintf("/v1/applications/%s/result", args[0]))
		},
	}
}

func documentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "documents <application-id>",
		Short: "List uploaded documents for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get(fmt.Sprintf("/v1/applications/%s/documents", args[0]))
		},
	}
}

func postJSON(path string, payload []byte) error {
	resp, err := httpcli.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func get(path string) error {
	resp, err := httpcli.Get(serverURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(body))
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
