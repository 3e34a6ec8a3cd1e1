package hcloud

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"

	"github.com/imamik/devinfo/internal/config"
)

// testServer creates an httptest server that can be used to mock Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

func newTestServer() *testServer {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	return &testServer{
		server: server,
		mux:    mux,
	}
}

func (ts *testServer) close() {
	ts.server.Close()
}

// client returns an hcloud.Client configured to use the test server.
func (ts *testServer) client() *hcloud.Client {
	return hcloud.NewClient(
		hcloud.WithToken("test-token"),
		hcloud.WithEndpoint(ts.server.URL),
	)
}

// realClient returns a RealClient configured to use the test server.
func (ts *testServer) realClient() *RealClient {
	return NewRealClient("test-token",
		WithHCloudClient(ts.client()),
		WithTimeouts(config.TestTimeouts()),
	)
}

func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func errorResponse(w http.ResponseWriter, statusCode int, code hcloud.ErrorCode, message string) {
	jsonResponse(w, statusCode, schema.ErrorResponse{
		Error: schema.Error{Code: string(code), Message: message},
	})
}

func successAction(id int64, command string) schema.Action {
	return schema.Action{
		ID:       id,
		Status:   string(hcloud.ActionStatusSuccess),
		Command:  command,
		Progress: 100,
		Started:  time.Now(),
	}
}

type networkCreateRequest struct {
	Name    string            `json:"name"`
	IPRange string            `json:"ip_range"`
	Labels  map[string]string `json:"labels"`
}

type labelsUpdateRequest struct {
	Labels map[string]string `json:"labels"`
}

type addSubnetRequest struct {
	Type        string `json:"type"`
	IPRange     string `json:"ip_range"`
	NetworkZone string `json:"network_zone"`
}

type deleteSubnetRequest struct {
	IPRange string `json:"ip_range"`
}

type serverCreateRequest struct {
	Name       string            `json:"name"`
	ServerType json.RawMessage   `json:"server_type"`
	Image      json.RawMessage   `json:"image"`
	Location   json.RawMessage   `json:"location"`
	UserData   string            `json:"user_data"`
	Labels     map[string]string `json:"labels"`
	Networks   []int64           `json:"networks"`
	PublicNet  *struct {
		EnableIPv4 bool `json:"enable_ipv4"`
		EnableIPv6 bool `json:"enable_ipv6"`
	} `json:"public_net"`
}

// fakeAPI is a small stateful Hetzner Cloud API covering networks,
// subnets and servers.
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int64
	networks map[int64]*schema.Network
	servers  map[int64]*schema.Server

	serverTypes []schema.ServerType

	lastServerCreate serverCreateRequest
	calls            map[string]int
	// lockedDeletes makes the next n network deletes fail with "locked".
	lockedDeletes int
	// createErrors are returned, in order, by the next server creates.
	createErrors []hcloud.ErrorCode
}

func newFakeAPI(t *testing.T) (*fakeAPI, *RealClient) {
	t.Helper()

	api := &fakeAPI{
		nextID:   1,
		networks: map[int64]*schema.Network{},
		servers:  map[int64]*schema.Server{},
		serverTypes: []schema.ServerType{
			{ID: 1, Name: "cx22", Cores: 2, Memory: 4, Disk: 40, Architecture: "x86"},
			{ID: 2, Name: "cx32", Cores: 4, Memory: 8, Disk: 80, Architecture: "x86"},
			{ID: 3, Name: "cpx11", Cores: 2, Memory: 2, Disk: 40, Architecture: "x86"},
			{ID: 4, Name: "cax11", Cores: 2, Memory: 4, Disk: 40, Architecture: "arm"},
		},
		calls: map[string]int{},
	}

	ts := newTestServer()
	t.Cleanup(ts.close)
	api.register(ts)
	return api, ts.realClient()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (f *fakeAPI) register(ts *testServer) {
	handle := func(pattern string, fn func(http.ResponseWriter, *http.Request)) {
		ts.handleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.calls[pattern]++
			fn(w, r)
		})
	}

	handle("GET /actions/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		jsonResponse(w, http.StatusOK, schema.ActionGetResponse{Action: successAction(id, "poll")})
	})
	handle("GET /actions", func(w http.ResponseWriter, r *http.Request) {
		var actions []schema.Action
		for _, raw := range r.URL.Query()["id"] {
			id, _ := strconv.ParseInt(raw, 10, 64)
			actions = append(actions, successAction(id, "poll"))
		}
		jsonResponse(w, http.StatusOK, schema.ActionListResponse{Actions: actions})
	})

	handle("GET /locations", func(w http.ResponseWriter, r *http.Request) {
		var locations []schema.Location
		if name := r.URL.Query().Get("name"); name == "fsn1" {
			locations = append(locations, schema.Location{ID: 1, Name: "fsn1", NetworkZone: "eu-central"})
		}
		jsonResponse(w, http.StatusOK, schema.LocationListResponse{Locations: locations})
	})

	handle("GET /server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{ServerTypes: f.serverTypes})
	})

	handle("GET /images", func(w http.ResponseWriter, r *http.Request) {
		images := []map[string]any{}
		q := r.URL.Query()
		if q.Get("name") == "ubuntu-22.04" {
			arch := q.Get("architecture")
			id := 100
			if arch == "arm" {
				id = 101
			}
			images = append(images, map[string]any{
				"id":           id,
				"type":         "system",
				"status":       "available",
				"name":         "ubuntu-22.04",
				"architecture": arch,
				"os_flavor":    "ubuntu",
				"os_version":   "22.04",
				"created":      "2022-04-21T00:00:00Z",
				"labels":       map[string]string{},
			})
		}
		jsonResponse(w, http.StatusOK, map[string]any{"images": images})
	})

	handle("GET /networks", func(w http.ResponseWriter, r *http.Request) {
		networks := []schema.Network{}
		name := r.URL.Query().Get("name")
		for _, n := range f.networks {
			if name == "" || n.Name == name {
				networks = append(networks, *n)
			}
		}
		jsonResponse(w, http.StatusOK, schema.NetworkListResponse{Networks: networks})
	})
	handle("GET /networks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		n, ok := f.networks[id]
		if !ok {
			errorResponse(w, http.StatusNotFound, hcloud.ErrorCodeNotFound, "network not found")
			return
		}
		jsonResponse(w, http.StatusOK, schema.NetworkGetResponse{Network: *n})
	})
	handle("POST /networks", func(w http.ResponseWriter, r *http.Request) {
		var req networkCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, http.StatusBadRequest, hcloud.ErrorCodeInvalidInput, err.Error())
			return
		}
		n := &schema.Network{
			ID:      f.id(),
			Name:    req.Name,
			IPRange: req.IPRange,
			Labels:  req.Labels,
			Created: time.Now(),
		}
		f.networks[n.ID] = n
		jsonResponse(w, http.StatusCreated, schema.NetworkCreateResponse{Network: *n})
	})
	handle("PUT /networks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		n, ok := f.networks[id]
		if !ok {
			errorResponse(w, http.StatusNotFound, hcloud.ErrorCodeNotFound, "network not found")
			return
		}
		var req labelsUpdateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		n.Labels = req.Labels
		jsonResponse(w, http.StatusOK, schema.NetworkUpdateResponse{Network: *n})
	})
	handle("DELETE /networks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		if f.lockedDeletes > 0 {
			f.lockedDeletes--
			errorResponse(w, http.StatusLocked, hcloud.ErrorCodeLocked, "network is locked")
			return
		}
		delete(f.networks, id)
		w.WriteHeader(http.StatusNoContent)
	})
	handle("POST /networks/{id}/actions/add_subnet", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		n, ok := f.networks[id]
		if !ok {
			errorResponse(w, http.StatusNotFound, hcloud.ErrorCodeNotFound, "network not found")
			return
		}
		var req addSubnetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		n.Subnets = append(n.Subnets, schema.NetworkSubnet{
			Type:        req.Type,
			IPRange:     req.IPRange,
			NetworkZone: req.NetworkZone,
			Gateway:     "192.168.0.1",
		})
		jsonResponse(w, http.StatusCreated, schema.NetworkActionAddSubnetResponse{Action: successAction(f.id(), "add_subnet")})
	})
	handle("POST /networks/{id}/actions/delete_subnet", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		n, ok := f.networks[id]
		if !ok {
			errorResponse(w, http.StatusNotFound, hcloud.ErrorCodeNotFound, "network not found")
			return
		}
		var req deleteSubnetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		kept := n.Subnets[:0]
		for _, s := range n.Subnets {
			if s.IPRange != req.IPRange {
				kept = append(kept, s)
			}
		}
		n.Subnets = kept
		jsonResponse(w, http.StatusCreated, schema.NetworkActionDeleteSubnetResponse{Action: successAction(f.id(), "delete_subnet")})
	})

	handle("GET /servers", func(w http.ResponseWriter, r *http.Request) {
		servers := []schema.Server{}
		name := r.URL.Query().Get("name")
		for _, s := range f.servers {
			if name == "" || s.Name == name {
				servers = append(servers, *s)
			}
		}
		jsonResponse(w, http.StatusOK, schema.ServerListResponse{Servers: servers})
	})
	handle("GET /servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		s, ok := f.servers[id]
		if !ok {
			errorResponse(w, http.StatusNotFound, hcloud.ErrorCodeNotFound, "server not found")
			return
		}
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{Server: *s})
	})
	handle("POST /servers", func(w http.ResponseWriter, r *http.Request) {
		var req serverCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, http.StatusBadRequest, hcloud.ErrorCodeInvalidInput, err.Error())
			return
		}
		f.lastServerCreate = req
		if len(f.createErrors) > 0 {
			code := f.createErrors[0]
			f.createErrors = f.createErrors[1:]
			errorResponse(w, http.StatusUnprocessableEntity, code, "server create failed")
			return
		}

		s := &schema.Server{
			ID:         f.id(),
			Name:       req.Name,
			Status:     "running",
			Labels:     req.Labels,
			Created:    time.Now(),
			ServerType: f.serverType(req.ServerType),
			Datacenter: &schema.Datacenter{
				ID:       1,
				Name:     "fsn1-dc14",
				Location: schema.Location{ID: 1, Name: "fsn1", NetworkZone: "eu-central"},
			},
		}
		if req.PublicNet == nil || req.PublicNet.EnableIPv4 {
			s.PublicNet.IPv4 = schema.ServerPublicNetIPv4{ID: 7, IP: "203.0.113.10"}
		}
		for _, netID := range req.Networks {
			n, ok := f.networks[netID]
			if !ok || len(n.Subnets) == 0 {
				errorResponse(w, http.StatusUnprocessableEntity, hcloud.ErrorCodeInvalidInput, "network has no subnet")
				return
			}
			prefix, err := netip.ParsePrefix(n.Subnets[0].IPRange)
			if err != nil {
				errorResponse(w, http.StatusUnprocessableEntity, hcloud.ErrorCodeInvalidInput, err.Error())
				return
			}
			ip := prefix.Addr().Next().Next()
			s.PrivateNet = append(s.PrivateNet, schema.ServerPrivateNet{Network: netID, IP: ip.String()})
		}
		f.servers[s.ID] = s

		// The create response is returned before the network is attached.
		created := *s
		created.PrivateNet = nil
		jsonResponse(w, http.StatusCreated, schema.ServerCreateResponse{
			Server:      created,
			Action:      successAction(f.id(), "create_server"),
			NextActions: []schema.Action{successAction(f.id(), "attach_to_network")},
		})
	})
	handle("PUT /servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		s, ok := f.servers[id]
		if !ok {
			errorResponse(w, http.StatusNotFound, hcloud.ErrorCodeNotFound, "server not found")
			return
		}
		var req labelsUpdateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.Labels = req.Labels
		jsonResponse(w, http.StatusOK, schema.ServerUpdateResponse{Server: *s})
	})
	handle("DELETE /servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		delete(f.servers, id)
		jsonResponse(w, http.StatusOK, schema.ServerDeleteResponse{Action: successAction(f.id(), "delete_server")})
	})
}

// serverType resolves a server_type request field, sent as id or name.
func (f *fakeAPI) serverType(raw json.RawMessage) schema.ServerType {
	var id int64
	var name string
	if err := json.Unmarshal(raw, &id); err != nil {
		_ = json.Unmarshal(raw, &name)
	}
	for _, st := range f.serverTypes {
		if st.ID == id || st.Name == name {
			return st
		}
	}
	return schema.ServerType{}
}

// setSubnetZone moves the subnets of a network to another network zone.
func (f *fakeAPI) setSubnetZone(networkID int64, zone string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.networks[networkID].Subnets {
		f.networks[networkID].Subnets[i].NetworkZone = zone
	}
}

func (f *fakeAPI) addNetwork(name, ipRange string, labels map[string]string, subnets ...string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := &schema.Network{ID: f.id(), Name: name, IPRange: ipRange, Labels: labels, Created: time.Now()}
	for _, s := range subnets {
		n.Subnets = append(n.Subnets, schema.NetworkSubnet{Type: "cloud", IPRange: s, NetworkZone: "eu-central", Gateway: "192.168.0.1"})
	}
	f.networks[n.ID] = n
	return n.ID
}

func (f *fakeAPI) network(id int64) (schema.Network, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.networks[id]
	if !ok {
		return schema.Network{}, false
	}
	return *n, true
}

func (f *fakeAPI) server(name string) (schema.Server, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.servers {
		if s.Name == name {
			return *s, true
		}
	}
	return schema.Server{}, false
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }
