package service

import (
	"context"
	"testing"

	"mosaic/internal/domain/models"
)

func folder(id int64, parentID *int64, name, path string) *models.Folder {
	return &models.Folder{ID: id, ParentID: parentID, Name: name, Path: path}
}

func ptr(v int64) *int64 { return &v }

func TestBuildTree(t *testing.T) {
	svc := &treeService{logger: discardLogger()}

	tests := []struct {
		name      string
		input     []*models.Folder
		wantRoots []int64
	}{
		{
			name:      "empty input",
			input:     nil,
			wantRoots: nil,
		},
		{
			name: "path order builds full hierarchy",
			input: []*models.Folder{
				folder(1, nil, "vol", ""),
				folder(2, ptr(1), "a", "a/"),
				folder(3, ptr(2), "b", "a/b/"),
			},
			wantRoots: []int64{1},
		},
		{
			name: "child before parent becomes a root",
			input: []*models.Folder{
				folder(3, ptr(2), "b", "a/b/"),
				folder(2, nil, "a", "a/"),
			},
			wantRoots: []int64{3, 2},
		},
		{
			name: "unknown parent becomes a root",
			input: []*models.Folder{
				folder(5, ptr(99), "orphan", "x/orphan/"),
			},
			wantRoots: []int64{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots := svc.BuildTree(tt.input)

			if len(roots) != len(tt.wantRoots) {
				t.Fatalf("got %d roots, want %d", len(roots), len(tt.wantRoots))
			}
			for i, want := range tt.wantRoots {
				if roots[i].ID != want {
					t.Errorf("root[%d] = %d, want %d", i, roots[i].ID, want)
				}
			}
		})
	}
}

func TestBuildTreeLinksChildren(t *testing.T) {
	svc := &treeService{logger: discardLogger()}

	roots := svc.BuildTree([]*models.Folder{
		folder(1, nil, "vol", ""),
		folder(2, ptr(1), "a", "a/"),
		folder(3, ptr(1), "b", "b/"),
		folder(4, ptr(2), "c", "a/c/"),
	})

	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	root := roots[0]
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}
	if root.Children[0].ID != 2 || root.Children[1].ID != 3 {
		t.Errorf("children = %d, %d; want 2, 3", root.Children[0].ID, root.Children[1].ID)
	}
	if len(root.Children[0].Children) != 1 || root.Children[0].Children[0].ID != 4 {
		t.Errorf("nested child not attached under folder 2")
	}
}

func TestVolumeTree(t *testing.T) {
	repo := newFakeFolderRepo()
	volID := int64(7)
	root := repo.add(&models.Folder{VolumeID: &volID, Name: "vol", Path: ""})
	a := repo.add(&models.Folder{VolumeID: &volID, ParentID: &root.ID, Name: "a", Path: "a/"})
	repo.add(&models.Folder{VolumeID: &volID, ParentID: &a.ID, Name: "b", Path: "a/b/"})
	// Different volume, must not appear.
	otherID := int64(8)
	repo.add(&models.Folder{VolumeID: &otherID, Name: "other", Path: ""})

	svc := NewTreeService(repo, discardLogger())

	roots, err := svc.VolumeTree(context.Background(), volID)
	if err != nil {
		t.Fatalf("VolumeTree: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	if roots[0].ID != root.ID {
		t.Errorf("root = %d, want %d", roots[0].ID, root.ID)
	}
	if len(roots[0].Children) != 1 || len(roots[0].Children[0].Children) != 1 {
		t.Errorf("hierarchy not fully linked: %+v", roots[0])
	}
}
