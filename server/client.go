package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// Client calls a tapeworm Server.
type Client struct {
	compile *connect.Client[CompileRequest, CompileResponse]
	run     *connect.Client[RunRequest, RunResponse]
}

// NewClient returns a Client for the server at baseURL, for example
// "http://localhost:4600".
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	codec := connect.WithCodec(cborCodec{})
	return &Client{
		compile: connect.NewClient[CompileRequest, CompileResponse](httpClient, baseURL+CompileProcedure, codec),
		run:     connect.NewClient[RunRequest, RunResponse](httpClient, baseURL+RunProcedure, codec),
	}
}

// Compile calls the Compile procedure.
func (c *Client) Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error) {
	resp, err := c.compile.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Run calls the Run procedure.
func (c *Client) Run(ctx context.Context, req *RunRequest) (*RunResponse, error) {
	resp, err := c.run.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
