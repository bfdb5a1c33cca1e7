// Package crop implements a mechanistic lettuce dry-matter growth
// model.
//
// The model keeps a two-pool state per plant, an assimilate pool and a
// structural pool, and advances it with fixed-step RK4 under a
// zero-order-hold control vector of temperature, radiation, CO2 and
// plant density. Photosynthesis, maintenance respiration and growth
// partitioning are closed-form physiological submodels combined in a
// single rate function; canopy light interception comes either from
// the Beer-Lambert law or from an externally observed closure value.
//
// The named coefficient set lives in a [Store] and is flattened into a
// positional vector before stepping; calibration goes through
// [Model.UpdateParameters].
package crop
