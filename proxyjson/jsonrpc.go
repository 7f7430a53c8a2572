package proxyjson

import (
	"encoding/json"
	"fmt"
)

// Request is a JSON-RPC request object. Params carries a single JSON object
// whose shape is the command struct registered for Method.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// Response is a JSON-RPC response object.
type Response struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	ID     *interface{}    `json:"id"`
}

// NewRequest marshals the command struct into the params object of a request.
// A nil cmd produces a request with no params.
func NewRequest(id interface{}, method string, cmd interface{}) (*Request, error) {
	if method == "" {
		return nil, fmt.Errorf("empty method")
	}
	var params json.RawMessage
	if cmd != nil {
		var err error
		params, err = json.Marshal(cmd)
		if err != nil {
			return nil, err
		}
	}
	return &Request{
		Jsonrpc: "1.0",
		Method:  method,
		Params:  params,
		ID:      id,
	}, nil
}

// MarshalResponse marshals a result or an RPC error into a full JSON-RPC
// response ready for the wire.
func MarshalResponse(id interface{}, result interface{}, rpcErr *RPCError) ([]byte, error) {
	var marshalledResult json.RawMessage
	if rpcErr == nil {
		var err error
		marshalledResult, err = json.Marshal(result)
		if err != nil {
			return nil, err
		}
	}
	response := Response{
		Result: marshalledResult,
		Error:  rpcErr,
		ID:     &id,
	}
	return json.Marshal(&response)
}

// UnmarshalCmd decodes the params object of a request into the command
// struct registered for its method. The returned value is a pointer to a
// freshly allocated command struct.
func UnmarshalCmd(r *Request) (interface{}, error) {
	makeCmd, ok := Commands[r.Method]
	if !ok {
		return nil, ErrRPCMethodNotFoundStd
	}
	cmd := makeCmd()
	if len(r.Params) == 0 {
		return cmd, nil
	}
	if err := json.Unmarshal(r.Params, cmd); err != nil {
		return nil, NewRPCError(ErrRPCInvalidParams, err.Error())
	}
	return cmd, nil
}
