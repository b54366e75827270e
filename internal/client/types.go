package client

import (
	"fmt"

	"google.golang.org/grpc"
)

// DialConfig describes how to reach a userdir gateway server.
type DialConfig struct {
	Address    string
	Insecure   bool
	RootCA     string // optional root CA cert
	ClientCert string // optional client cert (mTLS)
	ClientKey  string // optional client key (mTLS)
}

// GRPCClient is a store.Gateway that forwards every call to a remote
// gateway server.
type GRPCClient struct {
	conn *grpc.ClientConn
	rpc  gatewayRPC
}

// Close releases the connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Target returns the address the client dials.
func (c *GRPCClient) Target() string {
	return c.conn.Target()
}

func NewClient(cfg DialConfig) (*GRPCClient, error) {
	conn, err := dial(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to dial server: %w", err)
	}
	return newGRPCClient(conn), nil
}
