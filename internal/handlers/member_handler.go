package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"churchadmin/internal/family"
	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/roster"
	"churchadmin/internal/service"
)

// MemberHandler serves the member directory and family groupings.
type MemberHandler struct {
	members  *service.MemberService
	families *service.FamilyService
	notes    *notify.Queue
}

func NewMemberHandler(members *service.MemberService, families *service.FamilyService, notes *notify.Queue) *MemberHandler {
	return &MemberHandler{members: members, families: families, notes: notes}
}

// filterFromQuery reads search, tags, isMember, sex and civilStatus.
func filterFromQuery(r *http.Request) (roster.Filter, error) {
	q := r.URL.Query()
	f := roster.Filter{
		Search:      q.Get("search"),
		Sex:         q.Get("sex"),
		CivilStatus: q.Get("civilStatus"),
	}
	for _, v := range q["tags"] {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	if v := q.Get("isMember"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.IsMember = &b
	}
	return f, nil
}

// List returns members matching the query filters, sorted by ?sort and ?order.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid isMember filter", "", nil)
		return
	}
	key, err := roster.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	order, err := roster.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	members, err := h.members.List(r.Context(), service.ListQuery{Filter: filter, Sort: key, Order: order})
	if err != nil {
		respondServiceError(w, err, "list members")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// Tags returns every tag in use.
func (h *MemberHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.members.Tags(r.Context())
	if err != nil {
		respondServiceError(w, err, "list tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.members.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get member")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var m models.Member
	if !decodeJSON(w, r, &m) {
		return
	}
	if err := h.members.Create(r.Context(), &m); err != nil {
		respondServiceError(w, err, "create member")
		return
	}
	announce(h.notes, "Member added: "+m.FullName())
	writeJSON(w, http.StatusCreated, m)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var m models.Member
	if !decodeJSON(w, r, &m) {
		return
	}
	m.ID = id
	if err := h.members.Update(r.Context(), &m); err != nil {
		respondServiceError(w, err, "update member")
		return
	}
	announce(h.notes, "Member updated: "+m.FullName())
	writeJSON(w, http.StatusOK, m)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.members.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete member")
		return
	}
	announce(h.notes, "Member removed")
	w.WriteHeader(http.StatusNoContent)
}

// Families groups the filtered directory into households. ?memberSort orders
// people inside a household, ?sort and ?order order the households.
func (h *MemberHandler) Families(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid isMember filter", "", nil)
		return
	}
	opts := family.DefaultOptions
	q := r.URL.Query()
	if opts.MemberSort, err = family.ParseMemberSortKey(q.Get("memberSort")); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	if opts.ListSort, err = roster.ParseSortKey(q.Get("sort")); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	if opts.Order, err = roster.ParseOrder(q.Get("order")); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	clusters, err := h.families.Groups(r.Context(), filter, opts)
	if err != nil {
		respondServiceError(w, err, "group families")
		return
	}
	writeJSON(w, http.StatusOK, clusters)
}
