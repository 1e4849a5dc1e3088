package models

import (
	"fmt"
	"slices"
)

// AccessLevel is what a requester may do with another context.
type AccessLevel string

const (
	AccessNone      AccessLevel = "none"
	AccessReadOnly  AccessLevel = "read-only"
	AccessReadWrite AccessLevel = "read-write"
)

func (a AccessLevel) CanRead() bool  { return a == AccessReadOnly || a == AccessReadWrite }
func (a AccessLevel) CanWrite() bool { return a == AccessReadWrite }

// Relationship is the position of the target relative to the requester.
type Relationship string

const (
	RelationshipSelf       Relationship = "self"
	RelationshipDescendant Relationship = "descendant"
	RelationshipSibling    Relationship = "sibling"
	RelationshipUncle      Relationship = "uncle"
	RelationshipAncestor   Relationship = "ancestor"
	RelationshipUnrelated  Relationship = "unrelated"
)

// ContextAccess is the resolved access of a requester to a target context.
type ContextAccess struct {
	Level          AccessLevel  `json:"level"`
	Relationship   Relationship `json:"relationship"`
	DiagnosticOnly bool         `json:"diagnostic_only"`
}

// HierarchyEntry places one context in the tree. An empty ParentID is a root.
type HierarchyEntry struct {
	ID                string `json:"id"        validate:"required"`
	ParentID          string `json:"parent_id,omitempty"`
	ShareWithSiblings bool   `json:"share_with_siblings"`
}

// ShareWithSiblingsKey is the node metadata flag read when building a hierarchy from a model.
const ShareWithSiblingsKey = "share_with_siblings"

// ContextHierarchy answers access questions from current tree positions.
// Nothing is cached per pair.
type ContextHierarchy struct {
	entries map[string]HierarchyEntry
}

// NewContextHierarchy builds a hierarchy, rejecting duplicate IDs, unknown parents and cycles.
func NewContextHierarchy(entries []HierarchyEntry) (*ContextHierarchy, error) {
	h := &ContextHierarchy{entries: make(map[string]HierarchyEntry, len(entries))}

	for _, entry := range entries {
		if err := ValidateID(entry.ID); err != nil {
			return nil, err
		}

		if _, dup := h.entries[entry.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNodeID, entry.ID)
		}

		h.entries[entry.ID] = entry
	}

	for _, entry := range entries {
		if entry.ParentID == "" {
			continue
		}

		if _, ok := h.entries[entry.ParentID]; !ok {
			return nil, fmt.Errorf("%w: %s (child %s)", ErrParentNotFound, entry.ParentID, entry.ID)
		}

		if entry.ParentID == entry.ID {
			return nil, fmt.Errorf("%w: %s is its own parent", ErrHierarchyCycle, entry.ID)
		}
	}

	for _, entry := range entries {
		if _, err := h.ancestors(entry.ID); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// HierarchyFromModel places the model at the root, containers under it, and
// actions under their parent container.
func HierarchyFromModel(model *FunctionModel) (*ContextHierarchy, error) {
	entries := []HierarchyEntry{{ID: model.ID}}

	for _, node := range model.ContainerNodes() {
		entries = append(entries, HierarchyEntry{
			ID:                node.ID,
			ParentID:          model.ID,
			ShareWithSiblings: sharesWithSiblings(node),
		})
	}

	for _, node := range model.ActionNodeList() {
		parent := ""
		if node.Action != nil {
			parent = node.Action.ParentID
		}

		entries = append(entries, HierarchyEntry{
			ID:                node.ID,
			ParentID:          parent,
			ShareWithSiblings: sharesWithSiblings(node),
		})
	}

	return NewContextHierarchy(entries)
}

// Hierarchy builds the context hierarchy of the model.
func (m *FunctionModel) Hierarchy() (*ContextHierarchy, error) {
	return HierarchyFromModel(m)
}

func sharesWithSiblings(node *Node) bool {
	share, _ := node.Metadata[ShareWithSiblingsKey].(bool)

	return share
}

// Contains reports whether the context is part of the hierarchy.
func (h *ContextHierarchy) Contains(id string) bool {
	_, ok := h.entries[id]

	return ok
}

// Parent returns the parent of a context; roots report an empty string.
func (h *ContextHierarchy) Parent(id string) string {
	return h.entries[id].ParentID
}

// ancestors walks parent links upward, nearest first.
func (h *ContextHierarchy) ancestors(id string) ([]string, error) {
	var chain []string

	seen := map[string]bool{id: true}

	for current := h.entries[id].ParentID; current != ""; current = h.entries[current].ParentID {
		if seen[current] {
			return nil, fmt.Errorf("%w: through %s", ErrHierarchyCycle, current)
		}

		seen[current] = true
		chain = append(chain, current)
	}

	return chain, nil
}

// Access resolves what requester may do with target's context.
func (h *ContextHierarchy) Access(requester, target string) ContextAccess {
	none := ContextAccess{Level: AccessNone, Relationship: RelationshipUnrelated}

	if !h.Contains(requester) || !h.Contains(target) {
		return none
	}

	if requester == target {
		return ContextAccess{Level: AccessReadOnly, Relationship: RelationshipSelf}
	}

	targetAncestors, _ := h.ancestors(target)
	if slices.Contains(targetAncestors, requester) {
		return ContextAccess{Level: AccessReadWrite, Relationship: RelationshipDescendant}
	}

	requesterAncestors, _ := h.ancestors(requester)
	if slices.Contains(requesterAncestors, target) {
		return ContextAccess{Level: AccessNone, Relationship: RelationshipAncestor}
	}

	targetParent := h.Parent(target)

	if h.Parent(requester) == targetParent {
		if h.entries[target].ShareWithSiblings {
			return ContextAccess{Level: AccessReadOnly, Relationship: RelationshipSibling}
		}

		return ContextAccess{Level: AccessNone, Relationship: RelationshipSibling}
	}

	for _, ancestor := range requesterAncestors {
		if h.Parent(ancestor) == targetParent {
			return ContextAccess{Level: AccessReadOnly, Relationship: RelationshipUncle, DiagnosticOnly: true}
		}
	}

	return none
}

// ResolveLinkAccess applies the hierarchy to a link whose endpoints are both
// nodes inside the same entity.
func ResolveLinkAccess(link *CrossFeatureLink, hierarchy *ContextHierarchy) (ContextAccess, error) {
	if link == nil || hierarchy == nil || !link.IsIntraEntity() {
		return ContextAccess{}, ErrNotHierarchical
	}

	if !hierarchy.Contains(link.Source.NodeID) {
		return ContextAccess{}, fmt.Errorf("%w: %s", ErrNodeNotFound, link.Source.NodeID)
	}

	if !hierarchy.Contains(link.Target.NodeID) {
		return ContextAccess{}, fmt.Errorf("%w: %s", ErrNodeNotFound, link.Target.NodeID)
	}

	return hierarchy.Access(link.Source.NodeID, link.Target.NodeID), nil
}
