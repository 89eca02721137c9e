package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// GatewayService is the gRPC service name of the translation gateway.
	GatewayService = "vartrans.v1.Translation"
	// GatewayTranslateMethod is the full method name of the unary Translate call.
	// Request and response are google.protobuf.Struct values with the fields
	// documented on GatewayRequest and GatewayResponse.
	GatewayTranslateMethod = "/" + GatewayService + "/Translate"
)

// GatewayRequest is the decoded form of a gateway Translate request.
type GatewayRequest struct {
	Text       string
	SourceLang string
	TargetLang string
	Engine     string
}

// Struct encodes r as the Struct sent on the wire.
func (r GatewayRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"text":        r.Text,
		"source_lang": r.SourceLang,
		"target_lang": r.TargetLang,
		"engine":      r.Engine,
	})
}

// GatewayRequestFromStruct decodes a wire request.
func GatewayRequestFromStruct(s *structpb.Struct) GatewayRequest {
	f := s.GetFields()
	return GatewayRequest{
		Text:       f["text"].GetStringValue(),
		SourceLang: f["source_lang"].GetStringValue(),
		TargetLang: f["target_lang"].GetStringValue(),
		Engine:     f["engine"].GetStringValue(),
	}
}

// GatewayResponse is the decoded form of a gateway Translate response.
type GatewayResponse struct {
	Text   string
	Engine string
	Cached bool
}

// Struct encodes r as the Struct sent on the wire.
func (r GatewayResponse) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"text":   r.Text,
		"engine": r.Engine,
		"cached": r.Cached,
	})
}

// GatewayResponseFromStruct decodes a wire response.
func GatewayResponseFromStruct(s *structpb.Struct) GatewayResponse {
	f := s.GetFields()
	return GatewayResponse{
		Text:   f["text"].GetStringValue(),
		Engine: f["engine"].GetStringValue(),
		Cached: f["cached"].GetBoolValue(),
	}
}

// RemoteClient implements the Translator interface by calling a vartrans
// translation gateway, so several processes share one cache.
type RemoteClient struct {
	addr   string
	conn   *grpc.ClientConn
	health grpc_health_v1.HealthClient
	logger *logrus.Entry
}

// NewRemoteClient connects lazily to the gateway at addr.
func NewRemoteClient(addr string, logger *logrus.Logger, opts ...grpc.DialOption) (*RemoteClient, error) {
	if logger == nil {
		logger = logrus.New()
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gateway client: %w", err)
	}
	return &RemoteClient{
		addr:   addr,
		conn:   conn,
		health: grpc_health_v1.NewHealthClient(conn),
		logger: logger.WithFields(logrus.Fields{"engine": EngineRemote, "addr": addr}),
	}, nil
}

// Translate forwards the request to the gateway.
func (c *RemoteClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	in, err := GatewayRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang}.Struct()
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, GatewayTranslateMethod, in, out); err != nil {
		return "", fmt.Errorf("gateway translate: %w", err)
	}
	resp := GatewayResponseFromStruct(out)
	c.logger.WithFields(logrus.Fields{
		"gateway_engine": resp.Engine,
		"cached":         resp.Cached,
	}).Debug("Gateway translation completed")
	return resp.Text, nil
}

// CheckHealth queries the standard gRPC health service for the gateway.
func (c *RemoteClient) CheckHealth(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: GatewayService})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("gateway not serving: %s", resp.GetStatus())
	}
	return nil
}

// SupportedLanguages returns the languages the gateway translates between.
func (c *RemoteClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{string(LanguageEN), string(LanguageZH)}, nil
}

// Close tears down the connection.
func (c *RemoteClient) Close() error {
	return c.conn.Close()
}
