// Package httpapi exposes the query, ingestion and settings services
// over HTTP for local frontends. Streaming queries are delivered as
// NDJSON: one event object per line, flushed per event.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/rs/cors"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driving"
	"github.com/chengahtung/local-lode/internal/logger"
)

// Services bundles the driving ports the API serves.
type Services struct {
	Query    driving.QueryService
	Ingest   driving.IngestService
	Admin    driving.IndexAdmin
	Settings driving.SettingsService
}

// API serves the REST surface.
type API struct {
	services Services
}

// New builds the HTTP handler: a go-restful container with permissive
// CORS for local frontends.
func New(services Services) http.Handler {
	api := &API{services: services}

	ws := new(restful.WebService)
	ws.Path("/api").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("/query").To(api.query))
	ws.Route(ws.POST("/query-stream").To(api.queryStream))
	ws.Route(ws.POST("/ingest").To(api.ingest))
	ws.Route(ws.POST("/reset").To(api.reset))
	ws.Route(ws.GET("/config").To(api.getConfig))
	ws.Route(ws.PUT("/config").To(api.updateConfig))
	ws.Route(ws.POST("/reset-kb-folder").To(api.resetKBFolder))

	container := restful.NewContainer()
	container.Add(ws)

	return cors.AllowAll().Handler(container)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func writeError(resp *restful.Response, status int, err error) {
	logger.Warn("http: %v", err)
	resp.WriteHeaderAndEntity(status, errorBody{Error: err.Error()})
}

func (a *API) query(req *restful.Request, resp *restful.Response) {
	var spec domain.QuerySpec
	if err := req.ReadEntity(&spec); err != nil {
		writeError(resp, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	result, err := a.services.Query.Query(req.Request.Context(), spec)
	if err != nil {
		writeError(resp, http.StatusBadGateway, err)
		return
	}
	resp.WriteEntity(result)
}

// queryStream writes one JSON event per line followed by a blank line,
// flushing after each event so the client sees fragments as they are
// generated.
func (a *API) queryStream(req *restful.Request, resp *restful.Response) {
	var spec domain.QuerySpec
	if err := req.ReadEntity(&spec); err != nil {
		writeError(resp, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp.Header().Set("Content-Type", "application/x-ndjson")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.WriteHeader(http.StatusOK)

	flusher, _ := resp.ResponseWriter.(http.Flusher)
	encoder := json.NewEncoder(resp)

	for event := range a.services.Query.QueryStream(req.Request.Context(), spec) {
		if err := encoder.Encode(event); err != nil {
			return
		}
		fmt.Fprintln(resp)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// ingestRequest mirrors the ingest options accepted over HTTP.
type ingestRequest struct {
	KBFolder   string `json:"kb_folder"`
	ChunkSize  int    `json:"chunk_size"`
	Overlap    int    `json:"overlap"`
	BatchSize  int    `json:"batch_size"`
	IngestDocx bool   `json:"ingest_docx"`
}

// ingestResponse reports how many chunks landed.
type ingestResponse struct {
	ChunksIngested int    `json:"chunks_ingested"`
	Partial        bool   `json:"partial,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (a *API) ingest(req *restful.Request, resp *restful.Response) {
	// An empty body runs ingestion with the stored settings.
	var body ingestRequest
	if err := req.ReadEntity(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(resp, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	count, err := a.services.Ingest.Ingest(req.Request.Context(), driving.IngestOptions{
		CorpusRoot:  body.KBFolder,
		ChunkSize:   body.ChunkSize,
		Overlap:     body.Overlap,
		BatchSize:   body.BatchSize,
		IncludeDocx: body.IngestDocx,
	})
	if err != nil {
		var partial *domain.IngestPartialError
		if errors.As(err, &partial) {
			resp.WriteHeaderAndEntity(http.StatusBadGateway, ingestResponse{
				ChunksIngested: count,
				Partial:        true,
				Error:          partial.Error(),
			})
			return
		}
		writeError(resp, http.StatusBadRequest, err)
		return
	}
	resp.WriteEntity(ingestResponse{ChunksIngested: count})
}

// resetResponse reports how many documents were removed.
type resetResponse struct {
	Removed int `json:"removed"`
}

func (a *API) reset(req *restful.Request, resp *restful.Response) {
	removed, err := a.services.Admin.Reset(req.Request.Context())
	if err != nil {
		writeError(resp, http.StatusBadGateway, err)
		return
	}
	resp.WriteEntity(resetResponse{Removed: removed})
}

func (a *API) getConfig(req *restful.Request, resp *restful.Response) {
	settings, err := a.services.Settings.Get()
	if err != nil {
		writeError(resp, http.StatusInternalServerError, err)
		return
	}
	resp.WriteEntity(settings)
}

func (a *API) updateConfig(req *restful.Request, resp *restful.Response) {
	var patch domain.SettingsPatch
	if err := req.ReadEntity(&patch); err != nil {
		writeError(resp, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	settings, err := a.services.Settings.Update(patch)
	if err != nil {
		writeError(resp, http.StatusBadRequest, err)
		return
	}
	resp.WriteEntity(settings)
}

func (a *API) resetKBFolder(req *restful.Request, resp *restful.Response) {
	settings, err := a.services.Settings.ResetKBFolder()
	if err != nil {
		writeError(resp, http.StatusInternalServerError, err)
		return
	}
	resp.WriteEntity(settings)
}
