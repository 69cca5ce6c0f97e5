// Package player runs the timed playback loop.
//
// All per-frame work happens before the loop starts: the color tier is
// chosen once, every frame is rendered once and every duration computed
// once. The loop itself only writes, flushes and waits.
//
// # Restoration
//
// The terminal is restored on every exit path of [Player.Play]. Callers
// that handle signals should call [Player.Restore] from the handler and then
// cancel the context passed to Play:
//
//	p := player.New(os.Stdout)
//	go func() {
//		<-sigCh
//		p.Restore()
//		cancel()
//	}()
//	err := p.Play(ctx, doc.Frames, opts)
package player
