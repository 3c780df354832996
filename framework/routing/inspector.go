package routing

import (
	"errors"
	"net/http"
	"strings"

	"github.com/km-arc/clikernel/framework/commands"
	"github.com/km-arc/clikernel/framework/container"
	gohttp "github.com/km-arc/clikernel/framework/http"
)

// CommandInfo describes one registered command path.
type CommandInfo struct {
	Path        string   `json:"path"`
	SubCommands []string `json:"subCommands,omitempty"`
	Default     string   `json:"default,omitempty"`
}

// CommandResolution is the body of GET /commands/{root}/resolve.
type CommandResolution struct {
	Valid              bool     `json:"valid"`
	Command            string   `json:"command"`
	RemainingArguments []string `json:"remainingArguments"`
}

// Inspector serves a read-only JSON view of a container:
//
//	GET /healthz
//	GET /services
//	GET /services/{name}
//	GET /commands
//	GET /commands/{root}/resolve?arg=android&arg=--json
//	GET /metrics              (when a metrics handler is given)
type Inspector struct {
	c       *container.Container
	metrics http.Handler
}

// NewInspector returns an Inspector over c. metrics may be nil.
func NewInspector(c *container.Container, metrics http.Handler) *Inspector {
	return &Inspector{c: c, metrics: metrics}
}

// Routes registers the inspector endpoints on r.
func (in *Inspector) Routes(r *Router) {
	r.Get("/healthz", in.health)
	r.Prefix("/services", func(r *Router) {
		r.Get("/", in.services)
		r.Get("/{name}", in.service)
	})
	r.Prefix("/commands", func(r *Router) {
		r.Get("/", in.commands)
		r.Get("/{root}/resolve", in.resolve)
	})
	if in.metrics != nil {
		r.Handle("/metrics", in.metrics)
	}
}

// Router builds a Router serving only the inspector endpoints.
func (in *Inspector) Router() *Router {
	r := New(in.c.Logger())
	in.Routes(r)
	return r
}

// ── Handlers ─────────────────────────────────────────────────────────────────

func (in *Inspector) health(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]string{"status": "ok", "container": in.c.ID()})
}

func (in *Inspector) services(w http.ResponseWriter, _ *http.Request) {
	names := in.c.Names()
	out := make([]container.Description, 0, len(names))
	for _, name := range names {
		if d, ok := in.c.Describe(name); ok {
			out = append(out, d)
		}
	}
	gohttp.NewResponse(w).Success(out)
}

func (in *Inspector) service(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	name := req.RouteParam("name")
	d, ok := in.c.Describe(name)
	if !ok {
		res.NotFound(`service "` + name + `" is not registered`)
		return
	}
	res.Success(d)
}

func (in *Inspector) commands(w http.ResponseWriter, _ *http.Request) {
	paths := in.c.Commands()
	out := make([]CommandInfo, 0, len(paths))
	for _, path := range paths {
		info := CommandInfo{Path: path, SubCommands: in.c.SubCommands(path)}
		if !strings.Contains(path, "|") {
			info.Default, _ = in.c.DefaultCommand(path)
		}
		out = append(out, info)
	}
	gohttp.NewResponse(w).Success(out)
}

func (in *Inspector) resolve(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	root := req.RouteParam("root")
	args := req.QueryAll("arg")
	if args == nil {
		args = []string{}
	}

	if !in.c.HasCommand(root) {
		res.NotFound(`command "` + root + `" is not registered`)
		return
	}

	valid, err := in.c.IsValidHierarchicalCommand(r.Context(), root, args)
	if err != nil {
		if errors.Is(err, commands.ErrInvalidCommand) {
			res.ValidationError("The given command is invalid.", map[string][]string{"arguments": {err.Error()}})
			return
		}
		res.ServerError(err.Error())
		return
	}

	name, rest, err := in.c.CommandFor(r.Context(), root, args)
	if err != nil {
		res.ServerError(err.Error())
		return
	}
	if rest == nil {
		rest = []string{}
	}
	res.Success(CommandResolution{Valid: valid, Command: name, RemainingArguments: rest})
}
