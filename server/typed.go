package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/julienschmidt/httprouter"

	"github.com/speedy-rpc/speedygo/codec"
	"github.com/speedy-rpc/speedygo/errs"
	"github.com/speedy-rpc/speedygo/message"
	"github.com/speedy-rpc/speedygo/protocol"
)

// MessageHandler implements one typed-message method (C8'): it receives a
// validated request Message and returns a response Message of ResponseSchema.
type MessageHandler func(ctx context.Context, req *message.Message) (*message.Message, error)

type typedMethod struct {
	requestSchema  *message.Schema
	responseSchema *message.Schema
	handler        MessageHandler
}

type typedRegistry struct {
	mu      sync.RWMutex
	methods map[string]typedMethod
}

func newTypedRegistry() *typedRegistry {
	return &typedRegistry{methods: make(map[string]typedMethod)}
}

// RegisterMessageHandler installs a typed-message method reachable at
// POST /rpc/<method>, per spec.md §4.8 C8'.
func (s *Server) RegisterMessageHandler(method string, requestSchema, responseSchema *message.Schema, handler MessageHandler) {
	s.typed.mu.Lock()
	defer s.typed.mu.Unlock()
	s.typed.methods[method] = typedMethod{requestSchema: requestSchema, responseSchema: responseSchema, handler: handler}
	s.log.Info("registered typed method", "method", method)
}

func (s *Server) handleTyped(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	method := ps.ByName("method")

	s.typed.mu.RLock()
	tm, ok := s.typed.methods[method]
	s.typed.mu.RUnlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		errs.HTTPError(w, errs.WrapCode(err, errs.CodecError, "read request body"))
		return
	}

	fields, err := codec.DecodeValue(body)
	if err != nil {
		errs.HTTPError(w, err)
		return
	}
	fieldMap, ok := fields.(map[string]interface{})
	if !ok {
		errs.HTTPError(w, errs.B().Code(errs.CodecError).Msg("typed-message body must be a JSON object").Err())
		return
	}

	reqMsg, err := message.NewValidated(tm.requestSchema, fieldMap)
	if err != nil {
		writeServerError(w, err)
		return
	}

	end := s.beginRequest()
	respMsg, err := s.invokeTyped(req.Context(), tm, reqMsg)
	end()
	if err != nil {
		writeServerError(w, err)
		return
	}

	data, err := codec.Encode(respMsg.Fields())
	if err != nil {
		errs.HTTPError(w, err)
		return
	}
	writeJSON(w, data)
}

func (s *Server) invokeTyped(ctx context.Context, tm typedMethod, req *message.Message) (resp *message.Message, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errs.B().Code(errs.RemoteError).Msgf("panic handling %s", tm.requestSchema.Name).Err()
		}
	}()
	return tm.handler(ctx, req)
}

// writeServerError writes the ServerErrorResponse body the typed-message
// variant uses in place of RMI's exc_info, since there's no object/handle
// concept to disambiguate it from.
func writeServerError(w http.ResponseWriter, err error) {
	ei := protocol.ExceptionInfo{
		Exception: errs.Code(err).String(),
		Message:   err.Error(),
	}
	resp := protocol.ServerErrorResponse{ExcInfo: ei}
	data, encErr := codec.Encode(resp)
	if encErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

// writeJSON replies 200 with data as the body, setting Content-Length
// explicitly so the response isn't sent chunked, matching the dispatcher
// contract both the RMI and typed-message paths share.
func writeJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
