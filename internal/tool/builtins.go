package tool

// RegisterBuiltins adds the standard workspace tool set to a registry.
func RegisterBuiltins(r *Registry) {
	r.Register(NewReadTool())
	r.Register(NewCreateTool())
	r.Register(NewEditTool())
	r.Register(NewDeleteTool())
	r.Register(NewListTool())
	r.Register(NewBashTool())
	r.Register(NewGlobTool())
	r.Register(NewGrepTool())
	r.Register(NewWebFetchTool())
}
