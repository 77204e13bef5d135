package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ns1-tools/ns1-sync/api"
	"github.com/ns1-tools/ns1-sync/config"
	"github.com/ns1-tools/ns1-sync/metrics"
	"github.com/ns1-tools/ns1-sync/resource"
)

// Engine reconciles declared resources against live state, one resource at
// a time: fetch current, merge, diff, then at most one mutating API call.
// Nothing is cached between invocations; the remote platform is the single
// source of truth.
type Engine struct {
	client  api.Client
	dryRun  bool
	metrics *metrics.Metrics
}

func NewEngine(client api.Client, cfg *config.Config, metrics *metrics.Metrics) *Engine {
	return &Engine{
		client:  client,
		dryRun:  cfg.Reconcile.DryRun,
		metrics: metrics,
	}
}

// Sync reconciles every declared resource sequentially. A failure is
// reported and counted but does not stop later resources; each resource's
// reconciliation is independent.
func (e *Engine) Sync(ctx context.Context, decls resource.Declarations) Results {
	var results Results
	for _, spec := range decls.Zones {
		out, err := e.ReconcileZone(ctx, spec)
		results.record(spec.Identity(), out, err)
	}
	for _, spec := range decls.Records {
		out, err := e.ReconcileRecord(ctx, spec)
		results.record(spec.Identity(), out, err)
	}
	for _, spec := range decls.TSIGKeys {
		out, err := e.ReconcileTSIGKey(ctx, spec)
		results.record(spec.Identity(), out, err)
	}
	return results
}

func (e *Engine) ReconcileZone(ctx context.Context, spec resource.ZoneSpec) (Outcome, error) {
	out, err := e.reconcileZone(ctx, spec)
	e.count(resource.KindZone, out, err)
	return out, err
}

func (e *Engine) reconcileZone(ctx context.Context, spec resource.ZoneSpec) (Outcome, error) {
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}

	current, err := e.client.GetZone(ctx, spec.Zone)
	if err != nil {
		if !api.IsNotFound(err) {
			return Outcome{}, fmt.Errorf("fetch zone %s: %w", spec.Zone, err)
		}
		current = nil
	}

	if !spec.State.Present() {
		return e.delete(ctx, spec.Identity(), current)
	}

	have := sanitizeCurrent(current, resource.KindZone)
	target := Merge(spec.Document(), have, resource.ModeReplace, zoneFields)

	if current == nil {
		slog.Info("Zone not found, creating", "zone", spec.Zone)
		if e.dryRun {
			return Outcome{Changed: true, Resource: target}, nil
		}
		created, err := e.client.CreateZone(ctx, spec.Zone, target)
		if err != nil {
			return Outcome{}, fmt.Errorf("create zone %s: %w", spec.Zone, err)
		}
		return Outcome{Changed: true, Resource: created}, nil
	}

	changes := Diff(target, have, zoneFields)
	if changes.Empty() {
		slog.Debug("Zone in sync", "zone", spec.Zone)
		return Outcome{Changed: false, Resource: current}, nil
	}
	slog.Info("Zone drift detected", "zone", spec.Zone, "fields", changes.Paths())

	if e.dryRun {
		return Outcome{Changed: true, Resource: overlay(current, changes.Patch())}, nil
	}
	updated, err := e.client.UpdateZone(ctx, spec.Zone, changes.Patch())
	if err != nil {
		return Outcome{}, fmt.Errorf("update zone %s: %w", spec.Zone, err)
	}
	return Outcome{Changed: true, Resource: updated}, nil
}

func (e *Engine) ReconcileRecord(ctx context.Context, spec resource.RecordSpec) (Outcome, error) {
	out, err := e.reconcileRecord(ctx, spec)
	e.count(resource.KindRecord, out, err)
	return out, err
}

func (e *Engine) reconcileRecord(ctx context.Context, spec resource.RecordSpec) (Outcome, error) {
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}
	domain := spec.FQDN()
	rtype := strings.ToUpper(spec.Type)

	// The parent zone is checked first so a missing zone is distinguishable
	// from a missing record.
	if _, err := e.client.GetZone(ctx, spec.Zone); err != nil {
		if api.IsNotFound(err) {
			if !spec.State.Present() && spec.IgnoreMissingZone {
				slog.Info("Zone not found, counting record as absent", "zone", spec.Zone, "domain", domain)
				return Outcome{Changed: false}, nil
			}
			return Outcome{}, fmt.Errorf("zone %s for record %s/%s: %w", spec.Zone, domain, rtype, err)
		}
		return Outcome{}, fmt.Errorf("fetch zone %s: %w", spec.Zone, err)
	}

	current, err := e.client.GetRecord(ctx, spec.Zone, domain, rtype)
	if err != nil {
		if !api.IsNotFound(err) {
			return Outcome{}, fmt.Errorf("fetch record %s/%s: %w", domain, rtype, err)
		}
		current = nil
	}

	if !spec.State.Present() {
		return e.delete(ctx, spec.Identity(), current)
	}

	mode := spec.Mode
	if mode == "" {
		mode = resource.ModeReplace
	}
	have := sanitizeCurrent(current, resource.KindRecord)
	target := Merge(spec.Document(), have, mode, recordFields)

	if current == nil {
		slog.Info("Record not found, creating", "zone", spec.Zone, "domain", domain, "type", rtype)
		if e.dryRun {
			return Outcome{Changed: true, Resource: target}, nil
		}
		created, err := e.client.CreateRecord(ctx, spec.Zone, domain, rtype, target)
		if err != nil {
			return Outcome{}, fmt.Errorf("create record %s/%s: %w", domain, rtype, err)
		}
		return Outcome{Changed: true, Resource: created}, nil
	}

	changes := Diff(target, have, recordFields)
	if changes.Empty() {
		slog.Debug("Record in sync", "domain", domain, "type", rtype)
		return Outcome{Changed: false, Resource: current}, nil
	}
	slog.Info("Record drift detected", "domain", domain, "type", rtype, "fields", changes.Paths())

	if e.dryRun {
		return Outcome{Changed: true, Resource: overlay(current, changes.Patch())}, nil
	}
	updated, err := e.client.UpdateRecord(ctx, spec.Zone, domain, rtype, changes.Patch())
	if err != nil {
		return Outcome{}, fmt.Errorf("update record %s/%s: %w", domain, rtype, err)
	}
	return Outcome{Changed: true, Resource: updated}, nil
}

func (e *Engine) ReconcileTSIGKey(ctx context.Context, spec resource.TSIGKeySpec) (Outcome, error) {
	out, err := e.reconcileTSIGKey(ctx, spec)
	e.count(resource.KindTSIGKey, out, err)
	return out, err
}

func (e *Engine) reconcileTSIGKey(ctx context.Context, spec resource.TSIGKeySpec) (Outcome, error) {
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}
	name := spec.NormalizedName()

	current, err := e.client.GetKey(ctx, name)
	if err != nil {
		if !api.IsNotFound(err) {
			return Outcome{}, fmt.Errorf("fetch tsig key %s: %w", name, err)
		}
		current = nil
	}

	if !spec.State.Present() {
		return e.delete(ctx, spec.Identity(), current)
	}

	have := sanitizeCurrent(current, resource.KindTSIGKey)
	target := Merge(spec.Document(), have, resource.ModeReplace, tsigKeyFields)

	if current == nil {
		slog.Info("Tsig key not found, creating", "name", name)
		if e.dryRun {
			return Outcome{Changed: true, Resource: target}, nil
		}
		created, err := e.client.CreateKey(ctx, name, target)
		if err != nil {
			return Outcome{}, fmt.Errorf("create tsig key %s: %w", name, err)
		}
		return Outcome{Changed: true, Resource: created}, nil
	}

	changes := Diff(target, have, tsigKeyFields)
	if changes.Empty() {
		slog.Debug("Tsig key in sync", "name", name)
		return Outcome{Changed: false, Resource: current}, nil
	}
	slog.Info("Tsig key drift detected", "name", name, "fields", changes.Paths())

	if e.dryRun {
		return Outcome{Changed: true, Resource: overlay(current, changes.Patch())}, nil
	}
	updated, err := e.client.UpdateKey(ctx, name, changes.Patch())
	if err != nil {
		return Outcome{}, fmt.Errorf("update tsig key %s: %w", name, err)
	}
	return Outcome{Changed: true, Resource: updated}, nil
}

// delete handles state=absent for every kind: deleting what is already gone
// is a reported no-op, including a delete race lost to someone else.
func (e *Engine) delete(ctx context.Context, id resource.Identity, current resource.Doc) (Outcome, error) {
	if current == nil {
		slog.Debug("Already absent", "resource", id.String())
		return Outcome{Changed: false}, nil
	}
	if e.dryRun {
		return Outcome{Changed: true, Resource: current}, nil
	}

	var err error
	switch id.Kind {
	case resource.KindZone:
		err = e.client.DeleteZone(ctx, id.Zone)
	case resource.KindRecord:
		err = e.client.DeleteRecord(ctx, id.Zone, id.Domain, id.Type)
	case resource.KindTSIGKey:
		err = e.client.DeleteKey(ctx, id.Name)
	}
	if err != nil {
		if api.IsNotFound(err) {
			return Outcome{Changed: false}, nil
		}
		return Outcome{}, fmt.Errorf("delete %s: %w", id.String(), err)
	}
	return Outcome{Changed: true}, nil
}

// overlay builds the dry-run "after" document: current state with the patch
// deep-merged over it.
func overlay(current, patch resource.Doc) resource.Doc {
	out := current.Copy()
	for k, v := range patch {
		pm, pok := resource.AsMap(v)
		cm, cok := resource.AsMap(out[k])
		if pok && cok {
			out[k] = overlay(resource.Doc(cm), resource.Doc(pm))
			continue
		}
		out[k] = resource.CopyValue(v)
	}
	return out
}

func (e *Engine) count(kind resource.Kind, out Outcome, err error) {
	outcome := "unchanged"
	switch {
	case err != nil:
		outcome = "failed"
	case out.Changed:
		outcome = "changed"
	}
	e.metrics.IncReconcile(string(kind), outcome)
}
