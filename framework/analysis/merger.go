package analysis

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// prepareEntry keeps the source of a prepare for error reporting.
type prepareEntry struct {
	def    definition.ServicePrepareDefinition
	source string
}

// merger accumulates provider output and scanned declarations for one run.
type merger struct {
	hierarchy *TypeHierarchy
	logger    *zap.Logger

	services       []definition.ServiceDefinition
	serviceIndex   map[string]int
	prepares       []prepareEntry
	delegates      []definition.ServiceDelegateDefinition
	injects        []definition.InjectDefinition
	configurations []definition.ConfigurationDefinition
	aliases        []definition.AliasDefinition
}

func newMerger(provided definition.ContainerDefinition, hierarchy *TypeHierarchy, logger *zap.Logger) *merger {
	m := &merger{
		hierarchy:      hierarchy,
		logger:         logger,
		serviceIndex:   make(map[string]int),
		delegates:      provided.ServiceDelegateDefinitions(),
		injects:        provided.InjectDefinitions(),
		configurations: provided.ConfigurationDefinitions(),
		aliases:        provided.AliasDefinitions(),
	}
	for _, s := range provided.ServiceDefinitions() {
		m.addService(s, "provider")
	}
	for _, p := range provided.ServicePrepareDefinitions() {
		m.prepares = append(m.prepares, prepareEntry{def: p, source: "provider"})
	}
	return m
}

func (m *merger) addService(s definition.ServiceDefinition, source string) {
	if _, exists := m.serviceIndex[s.Type]; exists {
		m.logger.Warn("service declared more than once, keeping the first",
			zap.String("type", s.Type), zap.String("source", source))
		return
	}
	m.serviceIndex[s.Type] = len(m.services)
	m.services = append(m.services, s)
}

func (m *merger) service(typ string) (definition.ServiceDefinition, bool) {
	i, ok := m.serviceIndex[typ]
	if !ok {
		return definition.ServiceDefinition{}, false
	}
	return m.services[i], true
}

// add classifies one declaration into its definition kind.
func (m *merger) add(decl Declaration) error {
	if decl.Type == "" {
		return apperrors.Newf(apperrors.ErrInvalidDeclaration,
			"%s has no declaring type", decl.describe())
	}

	switch decl.Kind {
	case KindService:
		opts := []definition.ServiceOption{
			definition.WithName(decl.Name),
			definition.WithProfiles(decl.Profiles...),
		}
		if decl.Primary {
			opts = append(opts, definition.AsPrimary())
		}
		if m.hierarchy.IsAbstract(decl.Type) {
			m.addService(definition.ForAbstract(decl.Type, opts...), decl.Source)
		} else {
			m.addService(definition.ForConcrete(decl.Type, opts...), decl.Source)
		}

	case KindPrepare:
		if decl.Method == "" {
			return apperrors.Newf(apperrors.ErrInvalidPrepare,
				"%s has no method", decl.describe())
		}
		m.prepares = append(m.prepares, prepareEntry{
			def:    definition.ServicePrepareDefinition{Service: decl.Type, Method: decl.Method},
			source: decl.Source,
		})

	case KindDelegate:
		produced, err := delegateServiceType(decl)
		if err != nil {
			return err
		}
		m.delegates = append(m.delegates, definition.ServiceDelegateDefinition{
			DelegateType:   decl.Type,
			DelegateMethod: decl.Method,
			ServiceType:    produced,
		})

	case KindInject:
		if decl.Target == "" {
			return apperrors.Newf(apperrors.ErrInvalidInject,
				"%s has no target parameter or property", decl.describe())
		}
		typ, err := definition.ParseType(decl.ValueType)
		if err != nil {
			return apperrors.New(apperrors.ErrInvalidInject,
				decl.describe()+" has an invalid value type", err)
		}
		m.injects = append(m.injects, definition.NewInject(
			decl.Type, decl.Method, decl.Target, typ, decl.Value, decl.Store, decl.Profiles...))

	case KindConfiguration:
		m.configurations = append(m.configurations, definition.ConfigurationDefinition{
			Class: decl.Type,
			Name:  decl.Name,
		})

	default:
		return apperrors.Newf(apperrors.ErrInvalidDeclaration,
			"%s has unknown kind %q", decl.describe(), decl.Kind)
	}
	return nil
}

// delegateServiceType extracts the single class type a delegate produces.
func delegateServiceType(decl Declaration) (string, error) {
	if decl.Method == "" {
		return "", apperrors.Newf(apperrors.ErrInvalidDelegate,
			"%s has no factory method", decl.describe())
	}
	if decl.ValueType == "" {
		return "", apperrors.Newf(apperrors.ErrInvalidDelegate,
			"%s does not declare the type it produces", decl.describe())
	}
	typ, err := definition.ParseType(decl.ValueType)
	if err != nil {
		return "", apperrors.New(apperrors.ErrInvalidDelegate,
			decl.describe()+" produces an unparseable type", err)
	}
	switch {
	case typ.Kind == definition.TypeKindUnion:
		return "", apperrors.Newf(apperrors.ErrInvalidDelegate,
			"%s produces union type %s, a delegate must produce one class", decl.describe(), typ)
	case typ.Kind == definition.TypeKindIntersection:
		return "", apperrors.Newf(apperrors.ErrInvalidDelegate,
			"%s produces intersection type %s, a delegate must produce one class", decl.describe(), typ)
	case definition.IsScalar(typ.Name()):
		return "", apperrors.Newf(apperrors.ErrInvalidDelegate,
			"%s produces scalar type %s, a delegate must produce a class", decl.describe(), typ)
	}
	return typ.Name(), nil
}

// synthesizeDelegatedServices registers a service for every delegate whose
// produced type was never declared as one.
func (m *merger) synthesizeDelegatedServices() {
	for _, d := range m.delegates {
		if _, ok := m.service(d.ServiceType); ok {
			continue
		}
		var svc definition.ServiceDefinition
		if m.hierarchy.IsAbstract(d.ServiceType) {
			svc = definition.ForAbstract(d.ServiceType)
		} else {
			svc = definition.ForConcrete(d.ServiceType)
		}
		m.addService(svc, d.DelegateType+"::"+d.DelegateMethod)
		m.logger.Debug("service synthesized from delegate",
			zap.String("type", d.ServiceType),
			zap.Bool("abstract", svc.IsAbstract()),
			zap.String("delegate", d.DelegateType+"::"+d.DelegateMethod),
		)
	}
}

// partitionPrepares drops concrete-type prepares already covered by an
// abstract ancestor declaring the same method; the instance would otherwise
// be prepared twice when reached through its alias.
func (m *merger) partitionPrepares() ([]definition.ServicePrepareDefinition, error) {
	abstractMethods := make(map[string]map[string]bool)
	for _, p := range m.prepares {
		svc, ok := m.service(p.def.Service)
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrInvalidPrepare,
				"prepare %s::%s at %s targets a type that is not a service",
				p.def.Service, p.def.Method, p.source)
		}
		if svc.IsAbstract() {
			if abstractMethods[svc.Type] == nil {
				abstractMethods[svc.Type] = make(map[string]bool)
			}
			abstractMethods[svc.Type][p.def.Method] = true
		}
	}

	out := make([]definition.ServicePrepareDefinition, 0, len(m.prepares))
	seen := make(map[definition.ServicePrepareDefinition]bool, len(m.prepares))
	for _, p := range m.prepares {
		if seen[p.def] {
			continue
		}
		seen[p.def] = true

		svc, _ := m.service(p.def.Service)
		if svc.IsConcrete() && m.coveredByAncestor(svc.Type, p.def.Method, abstractMethods) {
			m.logger.Debug("prepare suppressed by abstract ancestor",
				zap.String("service", p.def.Service), zap.String("method", p.def.Method))
			continue
		}
		out = append(out, p.def)
	}
	return out, nil
}

func (m *merger) coveredByAncestor(typ, method string, abstractMethods map[string]map[string]bool) bool {
	for _, ancestor := range m.hierarchy.Ancestors(typ) {
		if abstractMethods[ancestor][method] {
			return true
		}
	}
	return false
}

// synthesizeAliases emits a candidate alias for every registered
// (abstract, concrete subtype) pair, on top of provider aliases. Both sides
// keep registration order. Ambiguity is left for resolution.
func (m *merger) synthesizeAliases() []definition.AliasDefinition {
	out := make([]definition.AliasDefinition, 0, len(m.aliases))
	seen := make(map[definition.AliasDefinition]bool)
	add := func(alias definition.AliasDefinition) {
		if !seen[alias] {
			seen[alias] = true
			out = append(out, alias)
		}
	}
	for _, a := range m.aliases {
		add(a)
	}

	for _, abstract := range m.services {
		if !abstract.IsAbstract() {
			continue
		}
		for _, concrete := range m.services {
			if concrete.IsAbstract() || !m.hierarchy.IsSubtypeOf(concrete.Type, abstract.Type) {
				continue
			}
			add(definition.AliasDefinition{AbstractService: abstract.Type, ConcreteService: concrete.Type})
		}
	}
	return out
}

func (m *merger) build(prepares []definition.ServicePrepareDefinition, aliases []definition.AliasDefinition) definition.ContainerDefinition {
	b := definition.NewBuilder()
	for _, s := range m.services {
		b = b.WithServiceDefinition(s)
	}
	for _, a := range aliases {
		b = b.WithAliasDefinition(a)
	}
	for _, p := range prepares {
		b = b.WithServicePrepareDefinition(p)
	}
	for _, d := range m.delegates {
		b = b.WithServiceDelegateDefinition(d)
	}
	for _, i := range m.injects {
		b = b.WithInjectDefinition(i)
	}
	for _, c := range m.configurations {
		b = b.WithConfigurationDefinition(c)
	}
	return b.Build()
}
