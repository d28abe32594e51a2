package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// client habla HTTP con un sessiond.
type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("SESSIOND_URL", "http://localhost:8080")
		out     = envOr("SESSIOND_OUT", "text")
	)

	cl := &client{
		BaseURL:   baseURL,
		OutFormat: out,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}

	root := &cobra.Command{
		Use:   "lotctl",
		Short: "CLI de diagnóstico para sessiond",
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", baseURL, "URL base de sessiond (env SESSIOND_URL)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", out, "Formato de salida: json|text")

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Verifica que sessiond responda",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping falló: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login por email/password y muestra el estado resuelto",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loginEmail == "" || loginPassword == "" {
				return fmt.Errorf("faltan --email y --password")
			}
			body, _ := json.Marshal(map[string]string{
				"email":    loginEmail,
				"password": loginPassword,
			})
			status, resp, err := cl.do("POST", "/v1/session/login", body)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			if status/100 != 2 {
				return fmt.Errorf("login rechazado: status=%d", status)
			}
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password")

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Muestra el estado de sesión resuelto y las capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/v1/session/me", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Termina la sesión actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("POST", "/v1/session/logout", nil)
			if err != nil {
				return err
			}
			if status == http.StatusNoContent {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-corre la resolución de perfil",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("POST", "/v1/session/refresh", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	root.AddCommand(pingCmd, loginCmd, meCmd, logoutCmd, refreshCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
