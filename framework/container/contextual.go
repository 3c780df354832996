package container

// ContextualBuilder implements the fluent contextual binding API.
//
//	c.When("buildService").Needs("$fs").Give(func(c *container.Container) any {
//	    return &dryRunFS{}
//	})
//
// The factory runs every time the consumer is constructed and is never cached.
type ContextualBuilder struct {
	container *Container
	consumer  string
	needs     string
}

// Needs specifies which dependency key of the consumer is replaced.
func (b *ContextualBuilder) Needs(dependency string) *ContextualBuilder {
	b.needs = NormalizeKey(dependency)
	return b
}

// Give provides the factory used when the consumer resolves the dependency.
func (b *ContextualBuilder) Give(factory Factory) {
	b.container.mu.Lock()
	defer b.container.mu.Unlock()

	if _, ok := b.container.contextual[b.consumer]; !ok {
		b.container.contextual[b.consumer] = make(map[string]Factory)
	}
	b.container.contextual[b.consumer][b.needs] = factory
}

// GiveValue is a shorthand for Give with a pre-built value.
//
//	c.When("buildService").Needs("outputDir").GiveValue("/tmp/build")
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(_ *Container) any { return value })
}
