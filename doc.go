// Package hfcsim implements the core of a modelling language interpreter
// for projecting refrigerant/HFC substance flows, equipment populations,
// and greenhouse-gas consumption across simulated years under alternative
// policy scenarios.
//
// A program is parsed by the hfcsim/lang package into a Program, which an
// Engine then executes year by year, emitting one Result per
// (scenario, trial, application, substance, year).
package hfcsim
