package glsdk

// Version contains a string with the semver of this SDK
const Version = "1.2.0"
