package main

import (
	"context"
	"fmt"

	"roevhul/internal/ports"
	"roevhul/internal/ports/redisfeed"
)

// follow replays the stored history of matchID, then streams live moves to
// handle until the game ends or ctx is done.
func follow(ctx context.Context, feed *redisfeed.Publisher, matchID string, handle func(ports.MoveMessage)) error {
	// Subscribe before reading history so no move falls between the two.
	sub, err := feed.Subscribe(ctx, matchID)
	if err != nil {
		return err
	}
	defer sub.Close()

	history, err := feed.History(ctx, matchID)
	if err != nil {
		return fmt.Errorf("history %s: %w", matchID, err)
	}
	var lastTurn int64
	for _, msg := range history {
		handle(msg)
		lastTurn = msg.TurnID
		if msg.GameOver {
			return nil
		}
	}

	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return err
		}
		// Moves already replayed from history are delivered again on the channel.
		if msg.TurnID <= lastTurn {
			continue
		}
		handle(msg)
		lastTurn = msg.TurnID
		if msg.GameOver {
			return nil
		}
	}
}
