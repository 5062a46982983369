// Package controller implements the per-category model stores and
// the write path back to the service.
//
// # Architecture
//
// Each category (light, fan, lock, switch, valve, sensor-host) has
// its own controller: an RWMutex-guarded map of typed models plus
// the command methods the category supports. Controllers expose the
// store surface the event stream drives (InitializeElem, UpdateElem,
// Remove) and read accessors that hand out deep copies, so callers
// never share memory with the live models.
//
// Commands go the other way: a command method reads the current
// model to learn the device's function classes and supported values,
// renders the requested change into wire states stamped with the
// push time, writes them through the gateway and folds the accepted
// values straight back into the model. The next poll then confirms
// or corrects.
//
// Update detection is per feature: UpdateElem returns the names of
// the features a snapshot actually changed, and the event stream
// suppresses updates whose set comes back empty.
//
// # Usage
//
//	lights := controller.NewLightController(client)
//	if _, err := lights.InitializeElem(snap); err != nil {
//		return err
//	}
//	if err := lights.SetBrightness(ctx, snap.ID, 40); err != nil {
//		return err
//	}
//	light, err := lights.Get(snap.ID)
package controller
