package command

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"

	"github.com/gremlinsql/compiler/clog"
	"github.com/gremlinsql/compiler/compiler"
	"github.com/gremlinsql/compiler/sqlbuild"
)

const flagAddr = "addr"

// NewServeCmd returns the `serve` sub-command: an HTTP server exposing a
// POST /compile endpoint that accepts a pipeline fixture and returns the
// generated SQL as JSON, for interactive inspection during host-framework
// development, plus a GET /healthz liveness route. Grounded on cayley's
// graph/http package (httprouter.New(), one handler per route) — narrowed
// to diagnostics routes since this compiler has no quad data of its own to
// serve queries against. Only server startup is logged; requests are not.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP diagnostics server exposing /compile.",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString(flagAddr)
			opts, err := optionsFromConfig()
			if err != nil {
				return err
			}

			router := httprouter.New()
			router.POST("/compile", compileHandler(opts))
			router.GET("/healthz", healthHandler)

			clog.Infof("gremlinsqlctl: diagnostics server listening on %s", addr)
			return http.ListenAndServe(addr, router)
		},
	}
	cmd.Flags().String(flagAddr, ":8080", "address to listen on")
	return cmd
}

func healthHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type compileResponse struct {
	Statements []statementResponse `json:"statements"`
	Split      bool                `json:"split"`
}

type statementResponse struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params"`
}

func compileHandler(opts compiler.Options) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		steps, err := decodeSteps(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		plan, err := compiler.Compile(r.Context(), steps, opts)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}

		resp := compileResponse{Split: plan.Result.IsForMultipleQueries}
		for _, st := range plan.Result.Statements {
			b := sqlbuild.NewBuilder(opts.Build.Dialect)
			resp.Statements = append(resp.Statements, statementResponse{
				SQL:    st.Select.SQL(b),
				Params: st.Select.Params,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
