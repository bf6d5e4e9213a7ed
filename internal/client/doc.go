// Package client speaks the relay wire protocol from the controller side.
//
// Each call opens a fresh TCP connection, writes one request, and reads the
// reply until the relay closes the connection:
//
//	c := client.New("127.0.0.1:5000", client.WithDialTimeout(3*time.Second))
//	if err := c.SendCommand(ctx, "10.0.0.5", "hostname"); err != nil {
//	    return err
//	}
//	out, ok, err := c.GetResponse(ctx, "10.0.0.5")
//
// The relay answers some failures by closing without a reply; those surface
// as ErrNoReply. Values the relay's body extractor cannot carry (empty
// values, values containing a double quote) are rejected before dialing with
// ErrUnsupportedValue.
package client
