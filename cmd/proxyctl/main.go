package main

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/EOS-Nation/eosn-proxy/proxyjson"
)

// listCommands prints every method the server dispatcher accepts.
func listCommands() {
	methods := make([]string, 0, len(proxyjson.Commands))
	for method := range proxyjson.Commands {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	for _, method := range methods {
		fmt.Println(method)
	}
}

// makeCmd instantiates the registered command struct for method and fills
// its fields in declaration order from the positional args. Simple fields
// parse from their literal text; slices and structs parse as JSON.
func makeCmd(method string, args []string) (interface{}, error) {
	newCmd, ok := proxyjson.Commands[method]
	if !ok {
		return nil, fmt.Errorf("unrecognized command %q", method)
	}

	cmd := newCmd()
	rv := reflect.ValueOf(cmd).Elem()
	rt := rv.Type()
	if len(args) > rv.NumField() {
		return nil, fmt.Errorf("command %q takes at most %d parameters", method, rv.NumField())
	}

	for i, arg := range args {
		field := rv.Field(i)
		name := strings.ToLower(rt.Field(i).Name)
		switch field.Kind() {
		case reflect.String:
			field.SetString(arg)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %q must be an integer: %v", name, err)
			}
			field.SetInt(n)
		case reflect.Bool:
			b, err := strconv.ParseBool(arg)
			if err != nil {
				return nil, fmt.Errorf("parameter %q must be true or false: %v", name, err)
			}
			field.SetBool(b)
		default:
			if err := json.Unmarshal([]byte(arg), field.Addr().Interface()); err != nil {
				return nil, fmt.Errorf("parameter %q must be valid JSON: %v", name, err)
			}
		}
	}

	return cmd, nil
}

// sendPostRequest posts the marshalled JSON-RPC request to the server and
// returns the raw result bytes.
func sendPostRequest(marshalledJSON []byte, cfg *config) ([]byte, error) {
	protocol := "https"
	client := http.Client{}
	if cfg.NoTLS {
		protocol = "http"
	} else {
		pem, err := os.ReadFile(cfg.RPCCert)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(pem)
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		}
	}
	url := protocol + "://" + cfg.RPCServer

	httpRequest, err := http.NewRequest("POST", url, bytes.NewReader(marshalledJSON))
	if err != nil {
		return nil, err
	}
	httpRequest.Close = true
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.SetBasicAuth(cfg.RPCUser, cfg.RPCPassword)

	httpResponse, err := client.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	respBytes, err := io.ReadAll(httpResponse.Body)
	httpResponse.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading json reply: %v", err)
	}

	var resp proxyjson.Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		if httpResponse.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%d %s", httpResponse.StatusCode, http.StatusText(httpResponse.StatusCode))
		}
		return nil, fmt.Errorf("invalid server response: %v", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		os.Exit(1)
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "no command specified; use -l to list commands")
		os.Exit(1)
	}

	method := strings.ToLower(args[0])
	cmd, err := makeCmd(method, args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	request, err := proxyjson.NewRequest(1, method, cmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	marshalledJSON, err := json.Marshal(request)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	result, err := sendPostRequest(marshalledJSON, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Reindent for terminal readability; strings print unquoted.
	var str string
	if err := json.Unmarshal(result, &str); err == nil {
		fmt.Println(str)
		return
	}
	var dst bytes.Buffer
	if err := json.Indent(&dst, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(dst.String())
}
