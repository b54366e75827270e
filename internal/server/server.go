// Package server exposes a store.Gateway over gRPC so several directory
// front ends can share one backing store.
package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/rpc"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// New returns a gRPC server with the Gateway and health services
// registered.  Calls are logged through log.
func New(gw store.Gateway, log *logger.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(logCalls(log)))
	srv := grpc.NewServer(opts...)
	rpc.RegisterGatewayServer(srv, NewGatewayService(gw))

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Run starts an insecure gRPC server listening on addr using the provided
// Gateway.  It blocks until ctx is cancelled, then stops gracefully.
func Run(ctx context.Context, addr string, gw store.Gateway, log *logger.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, lis, New(gw, log), log)
}

// RunTLS is Run with mutual TLS: clients must present a certificate signed
// by the CA in caFile.
func RunTLS(ctx context.Context, addr, certFile, keyFile, caFile string, gw store.Gateway, log *logger.Logger) error {
	creds, err := TLSCredentials(certFile, keyFile, caFile)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, lis, New(gw, log, grpc.Creds(creds)), log)
}

// Serve runs srv on lis until ctx is cancelled.
func Serve(ctx context.Context, lis net.Listener, srv *grpc.Server, log *logger.Logger) error {
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			log.Info("shutting down gRPC server on %s", lis.Addr())
			srv.GracefulStop()
		case <-stopped:
		}
	}()
	defer close(stopped)

	log.Info("gRPC server listening on %s", lis.Addr())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// TLSCredentials builds server credentials that require and verify client
// certificates.
func TLSCredentials(certFile, keyFile, caFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load server key pair: %w", err)
	}
	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read client CA: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("no certificates found in %s", caFile)
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}), nil
}
