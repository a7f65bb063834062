package domain

// CategoryContext 分类层级解析结果
type CategoryContext struct {
	// Selected 选中的分类；未传或不存在时为 nil
	Selected *Category
	// Roots 一级分类
	Roots []Category
	// Candidates 参与报价归属判断的分类（选中分类的后代；未选中时为全部分类）
	Candidates []Category
	// SubCategories 返回给调用方的子分类（选中分类的直接子分类；未选中时为全部分类）
	SubCategories []Category
}

// CandidateIDs 返回候选分类 ID 集合
func (c CategoryContext) CandidateIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(c.Candidates))
	for _, cat := range c.Candidates {
		ids[cat.ID] = struct{}{}
	}
	return ids
}

// SelectedID 返回选中分类 ID；未选中时为 nil
func (c CategoryContext) SelectedID() *int64 {
	if c.Selected == nil {
		return nil
	}
	id := c.Selected.ID
	return &id
}

// ResolveContext 根据选中的分类 ID 解析分类上下文
// 选中的 ID 不存在不视为错误，等同于未选择分类
func ResolveContext(tree *CategoryTree, selectedID *int64) CategoryContext {
	ctx := CategoryContext{Roots: tree.Roots()}

	if selectedID != nil {
		if cat, ok := tree.Find(*selectedID); ok {
			ctx.Selected = &cat
		}
	}

	if ctx.Selected == nil {
		all := tree.All()
		ctx.Candidates = all
		ctx.SubCategories = all
		return ctx
	}

	ctx.Candidates = tree.Descendants(ctx.Selected.ID)
	ctx.SubCategories = tree.Children(ctx.Selected.ID)
	return ctx
}
