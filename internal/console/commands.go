package console

import (
	"context"
	"fmt"

	"github.com/HaiFongPan/reconsole/internal/dialogs"
	"github.com/HaiFongPan/reconsole/internal/router"
	"github.com/HaiFongPan/reconsole/internal/values"
)

func (c *Console) openConfig(ctx context.Context, _ string) error {
	if c.ConfigDialog() != nil {
		return nil
	}
	c.config = dialogs.OpenConfig(c.model)
	c.log.Add(router.Info, "configuration dialog opened")
	return nil
}

func (c *Console) openPhantoms(f values.Field) func(ctx context.Context, _ string) error {
	return func(ctx context.Context, _ string) error {
		if e := c.PhantomEditor(); e != nil && e.Field() == f {
			return nil
		}
		e, err := dialogs.OpenPhantoms(c.model, f)
		if err != nil {
			return err
		}
		c.phantoms = e
		return nil
	}
}

func (c *Console) about(ctx context.Context, _ string) error {
	c.modals.Push(dialogs.Modal{
		Kind:  dialogs.ModalInfo,
		Title: "About",
		Text:  fmt.Sprintf("reconsole %s\nTomography reconstruction operator console", c.opts.Version),
	})
	return nil
}

// ConfigLoad reads a configuration record into the open dialog
func (c *Console) ConfigLoad(path string) {
	d := c.ConfigDialog()
	if d == nil {
		return
	}
	if path == "" {
		path = c.router.Path()
	}
	if path == "" {
		c.fail("Load configuration", fmt.Errorf("no path given"))
		return
	}
	d.Load(c.ctx, c.deps.Store, path, c.deps.Post)
}

// ConfigSave writes the open dialog's working copy
func (c *Console) ConfigSave(path string) {
	d := c.ConfigDialog()
	if d == nil {
		return
	}
	if path == "" {
		path = c.router.Path()
	}
	if path == "" {
		c.fail("Save configuration", fmt.Errorf("no path given"))
		return
	}
	d.Save(c.ctx, c.deps.Store, path, c.deps.Post)
}

// ConfigOK commits the configuration dialog. A rejected working copy is
// reported and the dialog stays open.
func (c *Console) ConfigOK() error {
	d := c.ConfigDialog()
	if d == nil {
		return nil
	}
	if err := d.OK(); err != nil {
		c.fail("Configuration", err)
		return err
	}
	c.notify(router.Info, "configuration applied")
	return nil
}

// ConfigCancel closes the configuration dialog without committing
func (c *Console) ConfigCancel() {
	if d := c.ConfigDialog(); d != nil {
		d.Cancel()
		c.config = nil
	}
}

// PhantomOK commits the phantom editor
func (c *Console) PhantomOK() error {
	e := c.PhantomEditor()
	if e == nil {
		return nil
	}
	if err := e.OK(); err != nil {
		c.fail("Phantoms", err)
		return err
	}
	c.notify(router.Info, fmt.Sprintf("%s: %d phantoms", e.Field(), len(e.Rows())))
	return nil
}

// PhantomCancel closes the phantom editor without committing
func (c *Console) PhantomCancel() {
	if e := c.PhantomEditor(); e != nil {
		e.Cancel()
		c.phantoms = nil
	}
}
