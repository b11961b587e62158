package jackpot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/rpcclient"
)

// NodeCaller invokes a JSON-RPC procedure on an Elements node. A call that
// outlives its deadline fails with ErrTimeout and is not retried. Errors
// reported by the node are returned as (wrapped) *btcjson.RPCError.
type NodeCaller interface {
	Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
}

// runFunc runs an external program and returns its stdout and stderr.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// ctxError maps a finished context to the error returned for method.
func ctxError(ctx context.Context, method string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, method)
	}
	return fmt.Errorf("error calling %s: %w", method, ctx.Err())
}

// isNull reports whether a raw result is empty or JSON null.
func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// singleShot lists the methods with side effects on the node. They are sent
// as one HTTP POST bound to the call's context instead of going through
// rpcclient, whose POST handler resends failed requests on its own.
var singleShot = map[string]bool{
	"sendrawtransaction": true,
	"sendtoaddress":      true,
}

// RPCNode talks to elementsd over JSON-RPC.
type RPCNode struct {
	client  *rpcclient.Client
	http    *http.Client
	url     string
	user    string
	pass    string
	timeout time.Duration
	id      atomic.Uint64
}

// NewRPCNode returns a node caller for the RPC settings of config. It can
// error if there's an RPC connection error with the connection config.
func NewRPCNode(config Config) (*RPCNode, error) {
	// NOTE: for testing elementsd can be used in regtest with the following
	// params -
	// elementsd -chain=elementsregtest -rpcport=18884 -rpcuser=rpcuser -rpcpassword=rpcpass -validatepegin=0 -txindex=1
	host := config.Host
	if config.Wallet != "" {
		host = strings.TrimSuffix(host, "/") + "/wallet/" + config.Wallet
	}
	connCfg := &rpcclient.ConnConfig{
		Host:         host,
		User:         config.User,
		Pass:         config.Pass,
		HTTPPostMode: config.HTTPPostMode,
		DisableTLS:   config.DisableTLS,
	}
	client, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating elements RPC client: %v", err)
	}
	scheme := "https"
	if config.DisableTLS {
		scheme = "http"
	}
	return &RPCNode{
		client:  client,
		http:    &http.Client{},
		url:     scheme + "://" + host,
		user:    config.User,
		pass:    config.Pass,
		timeout: config.Timeout,
	}, nil
}

// Close shuts down the client.
func (n *RPCNode) Close() {
	n.client.Shutdown()
}

// Call implements NodeCaller.
func (n *RPCNode) Call(ctx context.Context, method string,
	params ...interface{}) (json.RawMessage, error) {

	rawParams := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s params: %v", method, err)
		}
		rawParams = append(rawParams, b)
	}

	ctx, cancel := withTimeout(ctx, n.timeout)
	defer cancel()

	if singleShot[method] {
		return n.post(ctx, method, rawParams)
	}

	type result struct {
		raw json.RawMessage
		err error
	}
	done := make(chan result, 1)
	future := n.client.RawRequestAsync(method, rawParams)
	go func() {
		raw, err := future.Receive()
		done <- result{raw, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctxError(ctx, method)
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("error calling %s: %w", method, r.err)
		}
		return r.raw, nil
	}
}

// post sends one JSON-RPC request and waits for its reply. It never resends:
// once the request may have reached the node, any failure is returned.
func (n *RPCNode) post(ctx context.Context, method string,
	params []json.RawMessage) (json.RawMessage, error) {

	body, err := json.Marshal(&btcjson.Request{
		Jsonrpc: btcjson.RpcVersion1,
		Method:  method,
		Params:  params,
		ID:      n.id.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding %s request: %v", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url,
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %v", method, err)
	}
	req.Close = true
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(n.user, n.pass)

	resp, err := n.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctxError(ctx, method)
		}
		return nil, fmt.Errorf("error calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctxError(ctx, method)
		}
		return nil, fmt.Errorf("error reading %s reply: %v", method, err)
	}
	var reply btcjson.Response
	if err := json.Unmarshal(respBytes, &reply); err != nil {
		return nil, fmt.Errorf("error calling %s: status code: %d, "+
			"response: %q", method, resp.StatusCode, string(respBytes))
	}
	if reply.Error != nil {
		return nil, fmt.Errorf("error calling %s: %w", method, reply.Error)
	}
	return reply.Result, nil
}

// CLINode runs elements-cli for every call, the way the puzzle tools were
// first operated by hand.
type CLINode struct {
	path    string
	chain   string
	wallet  string
	timeout time.Duration
	run     runFunc
}

// NewCLINode returns a node caller for the CLI settings of config.
func NewCLINode(config Config) (*CLINode, error) {
	if config.CLIPath == "" {
		return nil, fmt.Errorf("error creating elements-cli caller: no path")
	}
	return &CLINode{
		path:    config.CLIPath,
		chain:   config.Chain,
		wallet:  config.Wallet,
		timeout: config.Timeout,
		run:     execRun,
	}, nil
}

// Call implements NodeCaller.
func (n *CLINode) Call(ctx context.Context, method string,
	params ...interface{}) (json.RawMessage, error) {

	var args []string
	if n.chain != "" {
		args = append(args, "-chain="+n.chain)
	}
	if n.wallet != "" {
		args = append(args, "-rpcwallet="+n.wallet)
	}
	args = append(args, method)
	for _, p := range params {
		arg, err := cliArg(p)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s params: %v", method, err)
		}
		args = append(args, arg)
	}

	ctx, cancel := withTimeout(ctx, n.timeout)
	defer cancel()

	log.Tracef("Running %s %s", n.path, strings.Join(args, " "))
	stdout, stderr, err := n.run(ctx, n.path, args...)
	if ctx.Err() != nil {
		return nil, ctxError(ctx, method)
	}
	if err != nil {
		if rpcErr := parseCLIError(stderr); rpcErr != nil {
			return nil, fmt.Errorf("error calling %s: %w", method, rpcErr)
		}
		return nil, fmt.Errorf("error calling %s: %v: %s", method, err,
			strings.TrimSpace(string(stderr)))
	}
	return cliResult(stdout)
}

// cliArg renders a parameter the way elements-cli expects it on the
// command line: strings verbatim, everything else as JSON.
func cliArg(p interface{}) (string, error) {
	switch v := p.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// cliResult turns elements-cli stdout into a JSON result. Bare strings,
// such as a txid, are printed unquoted and are quoted here.
func cliResult(stdout []byte) (json.RawMessage, error) {
	out := bytes.TrimSpace(stdout)
	if len(out) == 0 {
		return json.RawMessage("null"), nil
	}
	switch {
	case out[0] == '{', out[0] == '[', out[0] == '"',
		bytes.Equal(out, []byte("null")),
		bytes.Equal(out, []byte("true")),
		bytes.Equal(out, []byte("false")):
		return json.RawMessage(out), nil
	}
	return json.Marshal(string(out))
}

var cliErrorRe = regexp.MustCompile(`(?s)error code:\s*(-?\d+)\s*error message:\s*(.*)`)

// parseCLIError extracts the node error printed by elements-cli:
//
//	error code: -25
//	error message:
//	bad-txns-inputs-missingorspent
func parseCLIError(stderr []byte) *btcjson.RPCError {
	m := cliErrorRe.FindSubmatch(stderr)
	if m == nil {
		return nil
	}
	code, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return nil
	}
	return &btcjson.RPCError{
		Code:    btcjson.RPCErrorCode(code),
		Message: strings.TrimSpace(string(m[2])),
	}
}
