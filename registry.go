package semka

// Registry maps widget tags to the WidgetFactory that builds them. When more
// than one factory can handle a tag, the one added last wins.
//
// A Registry is built once at startup and passed around on the Site. It is
// not safe to add factories while a Tree is using it.
type Registry struct {
	factories []WidgetFactory
}

// NewRegistry returns a Registry holding only the built-in loading
// placeholder factory, so host factories added later can override it.
func NewRegistry() *Registry {
	return &Registry{factories: []WidgetFactory{loadingFactory()}}
}

// AddWidget registers factory and returns the Registry, so calls can be
// chained.
func (r *Registry) AddWidget(factory WidgetFactory) *Registry {
	r.factories = append(r.factories, factory)
	return r
}

// GetWidget returns the most recently added factory that can handle tag. If
// none can, the error wraps ErrUnknownWidget and names the tag.
func (r *Registry) GetWidget(tag string) (WidgetFactory, error) {
	for i := len(r.factories) - 1; i >= 0; i-- {
		if r.factories[i].CanHandle(tag) {
			return r.factories[i], nil
		}
	}
	return nil, &WidgetError{Widget: tag, Err: ErrUnknownWidget}
}
