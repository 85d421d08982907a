package server

import (
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/speedy-rpc/speedygo/codec"
	"github.com/speedy-rpc/speedygo/errs"
	"github.com/speedy-rpc/speedygo/internal/metrics"
	"github.com/speedy-rpc/speedygo/protocol"
	"github.com/speedy-rpc/speedygo/registry"
)

// handleInvoke implements the RMI dispatcher from spec.md §4.6: POST
// /rpc/invoke/<objectid>.
func (s *Server) handleInvoke(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	objectID := ps.ByName("objectid")

	if _, ok := s.registry.Lookup(objectID); !ok {
		metrics.UnknownObject(objectID)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		errs.HTTPError(w, errs.WrapCode(err, errs.CodecError, "read request body"))
		return
	}

	sreq, err := protocol.DecodeServerRequest(body)
	if err != nil {
		errs.HTTPError(w, err)
		return
	}

	args := make([]interface{}, len(sreq.Args))
	for i, raw := range sreq.Args {
		v, err := codec.DecodeValue(raw)
		if err != nil {
			errs.HTTPError(w, err)
			return
		}
		args[i] = v
	}
	kw := make(map[string]interface{}, len(sreq.Kw))
	for k, raw := range sreq.Kw {
		v, err := codec.DecodeValue(raw)
		if err != nil {
			errs.HTTPError(w, err)
			return
		}
		kw[k] = v
	}

	end := s.beginRequest()
	start := time.Now()
	metrics.CallBegin(objectID, sreq.Method)
	result, err := s.registry.Dispatch(req.Context(), objectID, sreq.Method, args, kw)
	end()
	if err != nil {
		metrics.CallEnd(objectID, sreq.Method, time.Since(start).Seconds(), errs.Code(err).String())
		errs.HTTPError(w, err)
		return
	}

	resp, err := dispatchResultToResponse(result)
	if err != nil {
		metrics.CallEnd(objectID, sreq.Method, time.Since(start).Seconds(), errs.Code(err).String())
		errs.HTTPError(w, err)
		return
	}

	outcome := "ok"
	if result.Kind == registry.Raised {
		outcome = "exception"
	}
	metrics.CallEnd(objectID, sreq.Method, time.Since(start).Seconds(), outcome)

	data, err := resp.Encode()
	if err != nil {
		errs.HTTPError(w, err)
		return
	}
	writeJSON(w, data)
}

func dispatchResultToResponse(result registry.DispatchResult) (protocol.ServerResponse, error) {
	switch result.Kind {
	case registry.Handle:
		return protocol.HandleResponse(result.ObjectID), nil
	case registry.Raised:
		return protocol.ExceptionResponse(*result.Exception), nil
	default:
		data, err := codec.Encode(result.Value)
		if err != nil {
			return protocol.ServerResponse{}, err
		}
		return protocol.DataResponse(data), nil
	}
}
