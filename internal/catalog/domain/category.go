package domain

// Category 商品分类
// ParentID 为空表示一级分类
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// IsRoot 是否为一级分类
func (c Category) IsRoot() bool { return c.ParentID == nil }

// CategoryNode 分类树节点，Children 保存直接子分类 ID（按输入顺序）
type CategoryNode struct {
	Category Category
	Children []int64
}

// CategoryTree 由扁平分类列表一次性构建的显式分类树
// 构建后只读，可在多个请求间共享
type CategoryTree struct {
	all   []Category
	nodes map[int64]*CategoryNode
	roots []int64
}

// NewCategoryTree 构建分类树
// 重复 ID 以第一次出现为准；父分类不存在的分类不属于任何一级分类
func NewCategoryTree(categories []Category) *CategoryTree {
	t := &CategoryTree{
		all:   make([]Category, 0, len(categories)),
		nodes: make(map[int64]*CategoryNode, len(categories)),
	}
	for _, c := range categories {
		if _, dup := t.nodes[c.ID]; dup {
			continue
		}
		t.all = append(t.all, c)
		t.nodes[c.ID] = &CategoryNode{Category: c}
		if c.IsRoot() {
			t.roots = append(t.roots, c.ID)
		}
	}
	for _, c := range t.all {
		if c.ParentID == nil {
			continue
		}
		if parent, ok := t.nodes[*c.ParentID]; ok {
			parent.Children = append(parent.Children, c.ID)
		}
	}
	return t
}

// All 返回全部分类（去重后，保持输入顺序）
func (t *CategoryTree) All() []Category {
	return append([]Category(nil), t.all...)
}

// Find 按 ID 查找分类
func (t *CategoryTree) Find(id int64) (Category, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Category{}, false
	}
	return n.Category, true
}

// Roots 返回一级分类
func (t *CategoryTree) Roots() []Category {
	out := make([]Category, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.nodes[id].Category)
	}
	return out
}

// Children 返回直接子分类
func (t *CategoryTree) Children(id int64) []Category {
	n, ok := t.nodes[id]
	if !ok {
		return []Category{}
	}
	out := make([]Category, 0, len(n.Children))
	for _, cid := range n.Children {
		out = append(out, t.nodes[cid].Category)
	}
	return out
}

// Descendants 返回所有后代分类（广度优先）
// 使用 visited 集合，数据中出现环时不会死循环
func (t *CategoryTree) Descendants(id int64) []Category {
	n, ok := t.nodes[id]
	if !ok {
		return []Category{}
	}
	visited := map[int64]struct{}{id: {}}
	queue := append([]int64(nil), n.Children...)
	out := make([]Category, 0, len(queue))
	for len(queue) > 0 {
		cid := queue[0]
		queue = queue[1:]
		if _, seen := visited[cid]; seen {
			continue
		}
		visited[cid] = struct{}{}
		child := t.nodes[cid]
		out = append(out, child.Category)
		queue = append(queue, child.Children...)
	}
	return out
}

// MembershipIDs 返回分类自身及其后代的 ID 集合
func (t *CategoryTree) MembershipIDs(id int64) map[int64]struct{} {
	ids := map[int64]struct{}{id: {}}
	for _, c := range t.Descendants(id) {
		ids[c.ID] = struct{}{}
	}
	return ids
}
