// Package rules loads the nurturing rule catalog from a YAML file.
package rules

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	yamlv3 "gopkg.in/yaml.v3"

	"nurturing_engine/internal/domain/nurturing"
	"nurturing_engine/internal/render"
)

var ErrEmptyCatalog = errors.New("rule file defines no rules")

// document is the on-disk shape of a rule file.
type document struct {
	Rules []nurturing.Rule `koanf:"rules" yaml:"rules"`
}

// Load returns the catalog defined in path, or the built-in catalog when path is empty.
// Rules with triggers, actions or templates the engine does not know are kept and logged.
func Load(path string, logger *logrus.Entry) (nurturing.Catalog, error) {
	if path == "" {
		logger.Info("No rule file configured, using the built-in catalog")
		return nurturing.DefaultCatalog(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}

	var doc document
	if err := k.Unmarshal("", &doc); err != nil {
		return nil, fmt.Errorf("decoding rule file %s: %w", path, err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCatalog)
	}

	catalog, err := nurturing.NewCatalog(doc.Rules)
	if err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}

	for _, r := range catalog {
		ruleLogger := logger.WithField("rule_id", r.ID)
		if !r.Trigger.KnownTrigger() {
			ruleLogger.WithFields(logrus.Fields{
				"trigger":   r.Trigger.Kind,
				"condition": r.Trigger.Condition,
			}).Warn("Rule has an unknown or incomplete trigger and will match no contacts")
		}
		if !r.Action.KnownAction() {
			ruleLogger.WithField("action", r.Action.Kind).Warn("Rule has an unknown action and will be a no-op")
		}
		if r.Action.Kind == nurturing.ActionMessage && !render.Known(r.Action.TemplateID) {
			ruleLogger.WithField("template_id", r.Action.TemplateID).Warn("Rule uses an unknown template and will send the generic message")
		}
	}

	logger.WithFields(logrus.Fields{"file": path, "rules": len(catalog)}).Info("Rule catalog loaded")
	return catalog, nil
}

// Marshal renders a catalog in the same format Load reads.
func Marshal(c nurturing.Catalog) ([]byte, error) {
	out, err := yamlv3.Marshal(document{Rules: c})
	if err != nil {
		return nil, fmt.Errorf("encoding rule catalog: %w", err)
	}
	return out, nil
}
