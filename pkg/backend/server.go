package backend

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
	"github.com/matst80/dematerialized-catalog/pkg/api"
	"github.com/matst80/dematerialized-catalog/pkg/common"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const DefaultPageSize = 20

var (
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_backend_requests_total",
		Help: "The total number of requests served by the reference catalog backend",
	}, []string{"endpoint"})
	backendIgnoredParams = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_backend_ignored_params_total",
		Help: "The total number of query parameters the reference backend did not honor",
	})
)

// DefaultHonoredKeys is the parameter spelling each group is filtered by
// unless configured otherwise.
var DefaultHonoredKeys = map[types.Group][]string{
	types.Category:    {"category_id"},
	types.Subcategory: {"subcategory_slug[]"},
	types.Color:       {"color"},
}

// Server serves a Dataset over the catalog REST API. Only parameter keys
// listed in Honored filter the listing; every other parameter is ignored the
// way a real backend ignores unknown parameters.
type Server struct {
	Dataset  *Dataset
	Honored  map[types.Group][]string
	PageSize int
	logger   *zap.Logger
	decoder  *schema.Decoder
}

type listParams struct {
	Page  int `schema:"page"`
	Limit int `schema:"limit"`
}

func NewServer(dataset *Dataset, honored map[types.Group][]string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if honored == nil {
		honored = DefaultHonoredKeys
	}
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Server{
		Dataset:  dataset,
		Honored:  honored,
		PageSize: DefaultPageSize,
		logger:   logger,
		decoder:  decoder,
	}
}

// Handler registers the catalog endpoints and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc(api.CategoriesPath, common.JsonHandler(s.logger, s.optionsHandler(types.Category)))
	mux.HandleFunc(api.SubcategoriesPath, common.JsonHandler(s.logger, s.optionsHandler(types.Subcategory)))
	mux.HandleFunc(api.ColorsPath, common.JsonHandler(s.logger, s.optionsHandler(types.Color)))
	mux.HandleFunc(api.ItemsPath, common.JsonHandler(s.logger, s.listHandler))
	return mux
}

func (s *Server) optionsHandler(g types.Group) func(w http.ResponseWriter, r *http.Request, sessionId string) error {
	return func(w http.ResponseWriter, r *http.Request, sessionId string) error {
		if r.Method != http.MethodGet {
			return common.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		backendRequests.WithLabelValues(string(g)).Inc()
		options := s.Dataset.Options(g)
		if options == nil {
			options = []types.FacetOption{}
		}
		return common.WriteJson(w, http.StatusOK, options)
	}
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request, sessionId string) error {
	if r.Method != http.MethodGet {
		return common.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
	backendRequests.WithLabelValues("items").Inc()

	q := r.URL.Query()
	params := listParams{}
	if err := s.decoder.Decode(&params, q); err != nil {
		return common.WriteError(w, http.StatusBadRequest, "invalid paging parameters")
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = s.PageSize
	}

	matches := s.Filter(q)
	total := len(matches)
	totalPages := max(1, (total+params.Limit-1)/params.Limit)

	start := min((params.Page-1)*params.Limit, total)
	end := min(start+params.Limit, total)
	s.logger.Debug("listing", zap.String("session", sessionId), zap.String("query", r.URL.RawQuery), zap.Int("matches", total))

	return common.WriteJson(w, http.StatusOK, types.ListResponse{
		Items:      matches[start:end],
		Page:       params.Page,
		TotalPages: totalPages,
		TotalItems: total,
	})
}

// Filter returns the items matching every honored filter in q.
func (s *Server) Filter(q url.Values) []types.Item {
	honored := make(map[string]types.Group)
	for g, keys := range s.Honored {
		for _, key := range keys {
			honored[key] = g
		}
	}
	for key := range q {
		if key == "page" || key == "limit" {
			continue
		}
		if _, ok := honored[key]; !ok {
			backendIgnoredParams.Inc()
		}
	}

	ret := make([]types.Item, 0, len(s.Dataset.Items))
	for _, item := range s.Dataset.Items {
		if s.matches(item, q, honored) {
			ret = append(ret, item)
		}
	}
	return ret
}

func (s *Server) matches(item types.Item, q url.Values, honored map[string]types.Group) bool {
	for key, g := range honored {
		raw, ok := q[key]
		if !ok {
			continue
		}
		wanted := splitValues(key, raw)
		if len(wanted) == 0 {
			continue
		}
		option, found := s.Dataset.option(g, item)
		if !found {
			return false
		}
		if !matchesAny(optionValue(option, types.KindOfKey(key)), wanted) {
			return false
		}
	}
	return true
}

// splitValues collects the values of a key. Array keys repeat, singular keys
// carry a comma-joined list.
func splitValues(key string, raw []string) []string {
	ret := make([]string, 0, len(raw))
	for _, v := range raw {
		parts := []string{v}
		if !types.IsArrayKey(key) {
			parts = strings.Split(v, ",")
		}
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				ret = append(ret, p)
			}
		}
	}
	return ret
}

func optionValue(o types.FacetOption, kind types.ValueKind) string {
	switch kind {
	case types.IdValues:
		return o.Id
	case types.SlugValues:
		return o.Slug
	}
	return o.Name
}

func matchesAny(value string, wanted []string) bool {
	if value == "" {
		return false
	}
	for _, w := range wanted {
		if strings.EqualFold(value, w) {
			return true
		}
	}
	return false
}
