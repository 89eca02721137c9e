// Package service composes translation, retry and the picker into the
// interactive flow, and exposes a shared translation client as a gRPC
// gateway.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dasmlab/vartrans/pkg/translate"
)

// TranslationServer is the server side of the gateway's
// vartrans.v1.Translation service.
type TranslationServer interface {
	Translate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var translationServiceDesc = grpc.ServiceDesc{
	ServiceName: translate.GatewayService,
	HandlerType: (*TranslationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Translate", Handler: translateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vartrans/v1/translation.proto",
}

func translateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TranslationServer).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: translate.GatewayTranslateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TranslationServer).Translate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// TranslationService serves translations from one cached Client so that
// every process talking to the gateway shares the cache.
type TranslationService struct {
	// Client performs and caches the translations.
	Client *translate.Client

	// Engines names the engine used when a request does not pick one.
	Engines translate.EngineSource

	// Requests remembers recent requests.
	Requests *RequestLog

	// Logger for service operations.
	Logger *logrus.Logger
}

// NewTranslationService creates a TranslationService.
func NewTranslationService(client *translate.Client, engines translate.EngineSource, logger *logrus.Logger) *TranslationService {
	if logger == nil {
		logger = logrus.New()
	}
	if engines == nil {
		engines = translate.StaticEngine(translate.DefaultEngine)
	}
	return &TranslationService{
		Client:   client,
		Engines:  engines,
		Requests: NewRequestLog(logger),
		Logger:   logger,
	}
}

// Register installs the service on a gRPC server.
func (s *TranslationService) Register(reg grpc.ServiceRegistrar) {
	reg.RegisterService(&translationServiceDesc, s)
}

// Translate implements the gateway's unary Translate method.
func (s *TranslationService) Translate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := translate.GatewayRequestFromStruct(in)

	res, id, err := s.TranslateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	out, err := translate.GatewayResponse{Text: res.Text, Engine: string(res.Engine), Cached: res.Cached}.Struct()
	if err != nil {
		s.Logger.WithError(err).WithField("request_id", id).Error("[gRPC] Encoding response failed")
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

// TranslateRequest validates req, translates it and records it in the
// request log. Errors are gRPC status errors. The returned id identifies
// the request in the log and is empty when validation failed.
func (s *TranslationService) TranslateRequest(ctx context.Context, req translate.GatewayRequest) (translate.Result, string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.Logger.Error("[gRPC] Translate: text is required")
		return translate.Result{}, "", status.Error(codes.InvalidArgument, "text is required")
	}

	tr, err := buildRequest(text, req.SourceLang, req.TargetLang)
	if err != nil {
		s.Logger.WithError(err).Error("[gRPC] Translate: invalid language")
		return translate.Result{}, "", status.Error(codes.InvalidArgument, err.Error())
	}

	engine := req.Engine
	if engine == "" {
		engine = s.Engines.Engine()
	}

	id := s.Requests.Start(text, engine)
	logger := s.Logger.WithFields(logrus.Fields{
		"request_id":  id,
		"engine":      engine,
		"source_lang": tr.Source,
		"target_lang": tr.Target,
	})
	logger.Debug("[gRPC] Translate request received")

	start := time.Now()
	res, err := s.Client.Do(ctx, tr, engine)
	if err != nil {
		s.Requests.Fail(id, err)
		logger.WithError(err).Warn("[gRPC] Translation failed")
		if ctx.Err() != nil {
			return translate.Result{}, id, status.FromContextError(ctx.Err()).Err()
		}
		return translate.Result{}, id, status.Error(codes.Unavailable, fmt.Sprintf("translation failed: %v", err))
	}
	s.Requests.Complete(id, res)

	logger.WithFields(logrus.Fields{
		"cached":      res.Cached,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("[gRPC] Translation completed")
	return res, id, nil
}

// buildRequest honors an explicit direction and otherwise derives it from
// the script of text.
func buildRequest(text, source, target string) (translate.Request, error) {
	if target == "" {
		return translate.NewRequest(text), nil
	}
	to, err := parseLanguage(target)
	if err != nil {
		return translate.Request{}, err
	}
	from := translate.LanguageEN
	if to == translate.LanguageEN {
		from = translate.LanguageZH
	}
	if source != "" {
		if from, err = parseLanguage(source); err != nil {
			return translate.Request{}, err
		}
	}
	return translate.Request{Text: text, Source: from, Target: to}, nil
}

func parseLanguage(s string) (translate.Language, error) {
	switch l := translate.Language(strings.ToLower(strings.TrimSpace(s))); l {
	case translate.LanguageEN, translate.LanguageZH:
		return l, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}
