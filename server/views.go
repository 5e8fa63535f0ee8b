// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vitalflow/vitalflow/search"
)

const (
	viewCookie = "vf_view"
	maxViews   = 1024
)

// viewStore keeps one search session per map view. The oldest view is
// forgotten once max views exist.
type viewStore struct {
	newSearcher func() *search.Searcher
	max         int

	mu    sync.Mutex
	views map[string]*search.Searcher
	order []string
}

func newViewStore(newSearcher func() *search.Searcher, limit int) *viewStore {
	return &viewStore{
		newSearcher: newSearcher,
		max:         limit,
		views:       make(map[string]*search.Searcher),
	}
}

func (v *viewStore) get(id string) *search.Searcher {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.views[id]; ok {
		return s
	}

	s := v.newSearcher()
	v.views[id] = s
	v.order = append(v.order, id)

	if len(v.order) > v.max {
		delete(v.views, v.order[0])
		v.order = v.order[1:]
	}

	return s
}

func (v *viewStore) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.views)
}

// viewFor returns the search session of the caller's view, assigning a
// new view id when the request carries none.
func (s *Server) viewFor(ctx *gin.Context) *search.Searcher {
	id, err := ctx.Cookie(viewCookie)
	if err == nil {
		_, err = uuid.Parse(id)
	}

	if err != nil {
		id = uuid.NewString()
		ctx.SetCookie(viewCookie, id, 0, "/", "", false, true)
	}

	return s.views.get(id)
}
